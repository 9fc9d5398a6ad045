package main

import (
	"context"
	"flag"

	"citywatch/backend/auth"
	"citywatch/backend/config"
	"citywatch/backend/media"
	"citywatch/backend/problems"
	"citywatch/backend/rabbitmq"
	"citywatch/backend/server"
	"citywatch/backend/store"
	"citywatch/common"

	"github.com/apex/log"
)

func main() {
	flag.Parse()
	cfg := config.Load()

	st, err := setupStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up the store: %v", err)
	}

	var publisher problems.Publisher
	if cfg.AMQPURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRouting)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	h := server.NewHandler(
		auth.NewService(st, cfg.JWTSecret),
		problems.NewService(st, publisher),
		media.NewStorage(cfg.UploadDir),
	)
	h.StartService(cfg.Port, cfg.TrustedProxies)
}

func setupStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "mysql":
		db, err := common.DBConnect(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		s := store.NewMySQL(db)
		if err := s.InitSchema(context.Background()); err != nil {
			return nil, err
		}
		return s, nil
	default:
		s := store.NewMemory()
		if err := store.SeedDemoData(context.Background(), s); err != nil {
			return nil, err
		}
		return s, nil
	}
}
