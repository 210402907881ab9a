package middleware

import (
	"context"

	"github.com/robgibbons/express-unchained/models"
)

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, models.ContextRequestID, id)
}

func contextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, models.ContextClientIP, ip)
}
