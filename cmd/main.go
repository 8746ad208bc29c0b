// cmd/main.go
package main

import (
	"go-auth-api/app"
)

// @title           Go-Auth API
// @version         1.0
// @description     User authentication service issuing and managing signed session tokens.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
