package main

import (
	"os"

	"github.com/yigit/printq/internal/pkg/logger"
	"github.com/yigit/printq/internal/server"
)

// @title PrintQ API
// @version 1.0
// @description Campus print queue: wallet-funded print jobs approved and routed to printers by administrators
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email PRINTQadmin@gmail.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
