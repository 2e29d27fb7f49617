package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/schema"
	"github.com/listenupapp/fieldcodec/internal/service"
)

// ProvideContactService provides the contact service.
func ProvideContactService(i do.Injector) (*service.ContactService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	live := do.MustInvoke[*schema.Live](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewContactService(st.Store, live, log.Logger), nil
}

// ProvideFieldService provides the field service.
func ProvideFieldService(i do.Injector) (*service.FieldService, error) {
	live := do.MustInvoke[*schema.Live](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewFieldService(live, log.Logger), nil
}
