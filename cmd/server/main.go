package main

import "github.com/ishwarchoudhari/FloDo/internal/app"

// @title           FloDo Auth API
// @version         1.0
// @description     Session authentication, single-active-session enforcement and OTP password reset for the FloDo dashboard and client portal.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey SessionCookie
// @in   header
// @name Cookie
func main() {
	app.Run()
}
