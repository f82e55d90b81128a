// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dev-mohitbeniwal/gatekeeper/api/audit"
	"github.com/dev-mohitbeniwal/gatekeeper/api/dao"
	"github.com/dev-mohitbeniwal/gatekeeper/api/util"
)

type Services struct {
	User IUserService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService util.ICacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	userDAO := dao.NewUserDAO(driver, auditService)

	services := &Services{
		User: NewUserService(userDAO, validationUtil, cacheService, notificationSvc, eventBus),
	}

	return services, nil
}
