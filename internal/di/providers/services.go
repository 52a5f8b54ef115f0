package providers

import (
	"github.com/samber/do/v2"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/validation"
)

// ProvideActivityService provides the activity recorder.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewActivityService(storeHandle.Store, v, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, v, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	segmenter := do.MustInvoke[*segment.Segmenter](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	activities := do.MustInvoke[*service.ActivityService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, segmenter, searchService, activities, v, log.Logger), nil
}

// ProvideReadingService provides the reading position tracker.
func ProvideReadingService(i do.Injector) (*service.ReadingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activities := do.MustInvoke[*service.ActivityService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReadingService(storeHandle.Store, activities, v, log.Logger), nil
}

// ProvideBookmarkService provides the bookmark store.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activities := do.MustInvoke[*service.ActivityService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookmarkService(storeHandle.Store, activities, v, log.Logger), nil
}

// ProvideAnnotationService provides the paragraph annotator.
func ProvideAnnotationService(i do.Injector) (*service.AnnotationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	opts := do.MustInvoke[service.AnnotationOptions](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnnotationService(storeHandle.Store, opts, v, log.Logger), nil
}

// ProvideSocialService provides the follow graph service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activities := do.MustInvoke[*service.ActivityService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, activities, log.Logger), nil
}

// ProvideCommunityService provides community posts and comments.
func ProvideCommunityService(i do.Injector) (*service.CommunityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activities := do.MustInvoke[*service.ActivityService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommunityService(storeHandle.Store, activities, v, log.Logger), nil
}
