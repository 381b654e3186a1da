package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/internal/config"
	httpx "github.com/ranjith-devop/smart-medication/internal/http"
	"github.com/ranjith-devop/smart-medication/internal/http/handlers"
	"github.com/ranjith-devop/smart-medication/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.Logger)
	jwtMW := middleware.NewAuthMW(c.TokenSvc)

	r := httpx.BuildRouter(authH, jwtMW)

	addr := ":" + cfg.Port
	c.Logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
