// Package docs Taskboard API
//
// @title  Taskboard API
// @version 1.0.0
// @description Tasks and notes behind bearer-token authentication.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "taskboard/cmd/server/handlers/httperr"
	_ "taskboard/internal/services/auth"
	_ "taskboard/internal/services/notes"
	_ "taskboard/internal/services/profile"
	_ "taskboard/internal/services/tasks"
)
