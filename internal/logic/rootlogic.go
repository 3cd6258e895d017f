package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/svc"
	"cryptoagent/internal/types"
)

const welcomeMessage = "Welcome to Crypto Query API!"

type RootLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRootLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RootLogic {
	return &RootLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RootLogic) Root() (*types.RootResponse, error) {
	return &types.RootResponse{Message: welcomeMessage}, nil
}
