package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/sugarswap/sugarswap"
	"github.com/sugarswap/sugarswap/cmd/sugarswap/config"
	"github.com/sugarswap/sugarswap/internal/logger"
	"github.com/sugarswap/sugarswap/internal/version"
	"github.com/sugarswap/sugarswap/product"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	c := config.Get()
	if err := logger.Init(c.Logging.Conf); err != nil {
		log.WithError(err).Fatal("could not init logging")
	}
	log.WithField("version", version.VERSION).Info("starting SugarSwap server")

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.Fatal(err)
	}
	products := product.NewService(c.Upstream.Config)
	log.Info("Initialized product proxy")

	s := sugarswap.NewSugarSwap(c.Server, c.Sessions, backs, products)
	s.Start()
}
