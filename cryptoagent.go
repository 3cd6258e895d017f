// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"cryptoagent/internal/cli"
	"cryptoagent/internal/config"
	"cryptoagent/internal/handler"
	"cryptoagent/internal/svc"
)

var configFile = flag.String("f", "etc/cryptoagent.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf, rest.WithCors(cfg.CorsOrigins...))
	defer server.Stop()

	ctx := svc.MustNewServiceContext(*cfg)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)
	cli.LogConfigSummary(cfg)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
