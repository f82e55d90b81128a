// api/controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/gatekeeper/api/service"

type Controllers struct {
	User *UserController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		User: NewUserController(services.User),
	}
}
