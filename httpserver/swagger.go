package httpserver

import (
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the generated OpenAPI document served at /swagger/doc.json.
	_ "moviecatalog/docs"
)

//go:generate swag init -d ../ -g cmd/httpserver/main.go -o ../docs

func (s *Server) RegisterSwaggerRoutes() {
	s.Router.GET("/swagger/*", echoSwagger.WrapHandler)
}
