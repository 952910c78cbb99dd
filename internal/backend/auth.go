package backend

import (
	"context"
	"net/http"

	"github.com/dinehub/admin-console/internal/apiclient"
)

const authPath = "/admin/auth"

// AvatarField is the multipart field carrying an admin avatar.
const AvatarField = "avatar"

type Admin struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

type LoginResult struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// Login exchanges credentials for a backend bearer token. It is called on an
// unauthenticated client.
func (a *API) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var env envelope[LoginResult]
	body := map[string]string{"email": email, "password": password}
	if err := a.c.Post(ctx, authPath+"/login", body, &env); err != nil {
		return LoginResult{}, err
	}
	return env.Data, nil
}

func (a *API) Logout(ctx context.Context) (Ack, error) {
	var ack Ack
	err := a.c.Post(ctx, authPath+"/logout", struct{}{}, &ack)
	return ack, err
}

func (a *API) ForgotPassword(ctx context.Context, email string) (Ack, error) {
	var ack Ack
	err := a.c.Post(ctx, authPath+"/forgot-password", map[string]string{"email": email}, &ack)
	return ack, err
}

func (a *API) ResetPassword(ctx context.Context, email, otp, password string) (Ack, error) {
	var ack Ack
	body := map[string]string{"email": email, "otp": otp, "password": password}
	err := a.c.Post(ctx, authPath+"/reset-password", body, &ack)
	return ack, err
}

func (a *API) Me(ctx context.Context) (Admin, error) {
	return get[Admin](ctx, a.c, authPath+"/me", nil)
}

// UpdateAvatar uploads a new profile picture.
func (a *API) UpdateAvatar(ctx context.Context, avatar apiclient.File) (Ack, error) {
	avatar.Field = AvatarField
	var ack Ack
	err := a.c.Multipart(ctx, http.MethodPut, authPath+"/me/avatar", apiclient.Form{Files: []apiclient.File{avatar}}, &ack)
	return ack, err
}
