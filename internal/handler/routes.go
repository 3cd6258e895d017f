// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"cryptoagent/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/",
				Handler: RootHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/query",
				Handler: QueryHandler(serverCtx),
			},
		},
	)
}
