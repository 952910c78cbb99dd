package backend

import (
	"context"
	"net/http"

	"github.com/dinehub/admin-console/internal/apiclient"
)

// SubmitOnboarding registers a restaurant with its documents in one
// multipart request. The restaurant starts out Pending.
func (a *API) SubmitOnboarding(ctx context.Context, form apiclient.Form) (Ack, error) {
	var ack Ack
	err := a.c.Multipart(ctx, http.MethodPost, restaurantsPath+"/onboard", form, &ack)
	return ack, err
}
