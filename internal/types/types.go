// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

type QueryRequest struct {
	Q string `form:"q,optional"`
}

type QueryResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

type RootResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
