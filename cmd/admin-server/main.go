package main

import (
	"time"

	"github.com/liangdas/mqant"
	"github.com/liangdas/mqant/module"
	"github.com/liangdas/mqant/registry"
	"github.com/liangdas/mqant/registry/consul"
	"github.com/nats-io/nats.go"

	docs "taxonomy-editor/docs/admin"
	"taxonomy-editor/internal/modules/admin"
	"taxonomy-editor/internal/pkg/config"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/notify"
)

func main() {
	log.Init(log.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "info")), config.GetEnvOrDefault("ENVIRONMENT", "development"))
	logger := log.GetLogger()
	logger.Info("[Main] Taxonomy Editor Admin Server", "version", "1.0.0")

	consulAddr := config.GetEnvOrDefault("CONSUL_ADDRESS", "localhost:8500")
	natsAddr := config.GetEnvOrDefault("NATS_ADDRESS", "localhost:4222")
	logger.Info("[Main] 外部依赖地址", "consul", consulAddr, "nats", natsAddr)

	nc, err := nats.Connect("nats://"+natsAddr,
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		logger.Error("[Main] Failed to connect to NATS", err)
		return
	}
	defer nc.Close()
	// 合并事件与 mqant RPC 共用同一个连接
	notify.SetNatsConn(nc)

	// 跟随请求来源
	docs.SwaggerInfo.Host = ""
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	rs := consul.NewRegistry(func(options *registry.Options) {
		options.Addrs = []string{consulAddr}
	})

	app := mqant.CreateApp(
		module.Configure(config.GetEnvOrDefault("ADMIN_SERVER_CONFIG", "./configs/server/admin-server.json")),
		module.Debug(false),
		module.Nats(nc),
		module.Registry(rs),
	)

	app.Run(
		admin.Module(),
	)
}
