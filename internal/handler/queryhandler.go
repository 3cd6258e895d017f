package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"cryptoagent/internal/logic"
	"cryptoagent/internal/svc"
	"cryptoagent/internal/types"
)

func QueryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.QueryRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeJSONError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		l := logic.NewQueryLogic(r.Context(), svcCtx)
		resp, err := l.Query(&req)
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// writeError maps validation failures to 400 and hides everything else
// behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *logic.ValidationError
	if errors.As(err, &verr) {
		writeJSONError(w, r, http.StatusBadRequest, verr.Msg)
		return
	}
	writeJSONError(w, r, http.StatusInternalServerError, logic.ErrAnswerFailed.Error())
}

func writeJSONError(w http.ResponseWriter, r *http.Request, code int, detail string) {
	httpx.WriteJsonCtx(r.Context(), w, code, &types.ErrorResponse{Detail: detail})
}
