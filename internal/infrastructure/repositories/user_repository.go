package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ranjith-devop/smart-medication/domain"
)

// UserRepositoryImpl implements domain.UserRepository on a Mongo collection
type UserRepositoryImpl struct {
	coll *mongo.Collection
}

// userDoc is the persisted shape of a user. Identifier fields carry
// omitempty so that absent values stay absent and the sparse unique
// indexes never see empty strings.
type userDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name,omitempty"`
	Email           string             `bson:"email,omitempty"`
	PhoneNumber     string             `bson:"phoneNumber,omitempty"`
	GoogleID        string             `bson:"googleId,omitempty"`
	PasswordHash    string             `bson:"password,omitempty"`
	Role            string             `bson:"role"`
	IsEmailVerified bool               `bson:"isEmailVerified"`
	IsPhoneVerified bool               `bson:"isPhoneVerified"`
	OTP             *otpDoc            `bson:"otp,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type otpDoc struct {
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// NewUserRepository creates a new user repository
func NewUserRepository(coll *mongo.Collection) domain.UserRepository {
	return &UserRepositoryImpl{coll: coll}
}

// UpsertByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) UpsertByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.upsert(ctx, "phoneNumber", phone)
}

// UpsertByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) UpsertByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.upsert(ctx, "email", email)
}

// upsert atomically finds or creates the record holding the identifier.
// A losing concurrent upsert surfaces as a duplicate key; re-reading then
// returns the winner's record.
func (r *UserRepositoryImpl) upsert(ctx context.Context, field, value string) (*domain.User, error) {
	now := time.Now().UTC()
	filter := bson.M{field: value}
	update := bson.M{
		"$setOnInsert": bson.M{
			field:             value,
			"role":            domain.RolePatient,
			"isEmailVerified": false,
			"isPhoneVerified": false,
			"createdAt":       now,
			"updatedAt":       now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, err
	}
	return docToDomain(&doc), nil
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	doc := domainToDoc(user)
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrIdentifierInUse
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	user.CreatedAt = doc.CreatedAt
	user.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"phoneNumber": phone})
}

// FindByGoogleID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

// FindByIdentifier implements domain.UserRepository
func (r *UserRepositoryImpl) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"phoneNumber": identifier},
		bson.M{"email": identifier},
	}})
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return docToDomain(&doc), nil
}

// SetOTP implements domain.UserRepository. The update replaces any
// outstanding challenge wholesale.
func (r *UserRepositoryImpl) SetOTP(ctx context.Context, id string, otp *domain.OTPChallenge) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{
		"otp":       otpDoc{Code: otp.Code, ExpiresAt: otp.ExpiresAt},
		"updatedAt": time.Now().UTC(),
	}}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MarkVerified implements domain.UserRepository
func (r *UserRepositoryImpl) MarkVerified(ctx context.Context, id string, ch domain.Channel) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	flag := "isPhoneVerified"
	if ch == domain.ChannelEmail {
		flag = "isEmailVerified"
	}
	update := bson.M{
		"$set":   bson.M{flag: true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"otp": ""},
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Update implements domain.UserRepository. Empty identifier fields are left
// untouched (identifiers are never removed); a nil OTP clears the challenge.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	set := bson.M{
		"role":            user.Role,
		"isEmailVerified": user.IsEmailVerified,
		"isPhoneVerified": user.IsPhoneVerified,
		"updatedAt":       time.Now().UTC(),
	}
	if user.Name != "" {
		set["name"] = user.Name
	}
	if user.Email != "" {
		set["email"] = user.Email
	}
	if user.PhoneNumber != "" {
		set["phoneNumber"] = user.PhoneNumber
	}
	if user.GoogleID != "" {
		set["googleId"] = user.GoogleID
	}
	if user.PasswordHash != "" {
		set["password"] = user.PasswordHash
	}

	update := bson.M{"$set": set}
	if user.OTP == nil {
		update["$unset"] = bson.M{"otp": ""}
	} else {
		set["otp"] = otpDoc{Code: user.OTP.Code, ExpiresAt: user.OTP.ExpiresAt}
	}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrIdentifierInUse
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func domainToDoc(user *domain.User) *userDoc {
	doc := &userDoc{
		Name:            user.Name,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		GoogleID:        user.GoogleID,
		PasswordHash:    user.PasswordHash,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
	}
	if user.OTP != nil {
		doc.OTP = &otpDoc{Code: user.OTP.Code, ExpiresAt: user.OTP.ExpiresAt}
	}
	return doc
}

func docToDomain(doc *userDoc) *domain.User {
	user := &domain.User{
		ID:              doc.ID.Hex(),
		Name:            doc.Name,
		Email:           doc.Email,
		PhoneNumber:     doc.PhoneNumber,
		GoogleID:        doc.GoogleID,
		PasswordHash:    doc.PasswordHash,
		Role:            doc.Role,
		IsEmailVerified: doc.IsEmailVerified,
		IsPhoneVerified: doc.IsPhoneVerified,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.OTP != nil {
		user.OTP = &domain.OTPChallenge{Code: doc.OTP.Code, ExpiresAt: doc.OTP.ExpiresAt}
	}
	return user
}
