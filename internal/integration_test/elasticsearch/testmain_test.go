package elasticsearch

import (
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Avi18971911/Locus/internal/db/elasticsearch/bootstrapper"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// addressEnv names the cluster the integration tests run against. The tests are skipped when it
// is unset.
const addressEnv = "LOCUS_TEST_ELASTICSEARCH"

var es *elasticsearch.Client
var logger, _ = zap.NewDevelopment()

func TestMain(m *testing.M) {
	addresses := os.Getenv(addressEnv)
	if addresses == "" {
		log.Printf("%s is not set, skipping elasticsearch integration tests", addressEnv)
		os.Exit(0)
	}
	var err error
	es, err = elasticsearch.NewClient(
		elasticsearch.Config{
			Addresses: strings.Split(addresses, ","),
		},
	)
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}
	info, err := es.Info()
	if err != nil {
		logger.Fatal("Failed to get elasticsearch info", zap.Error(err))
	}
	log.Printf("Elasticsearch Info: %v", info)

	bs := bootstrapper.NewBootstrapper(es, logger)
	err = bs.BootstrapElasticsearch()
	if err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}
	code := m.Run()
	os.Exit(code)
}
