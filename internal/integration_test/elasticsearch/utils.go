package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Avi18971911/Locus/internal/db/elasticsearch/client"
	"github.com/elastic/go-elasticsearch/v8"
)

func deleteAllDocumentsFromIndex(es *elasticsearch.Client, index string) error {
	queryJSON, _ := json.Marshal(getAllQuery())
	res, err := es.DeleteByQuery([]string{index}, bytes.NewReader(queryJSON), es.DeleteByQuery.WithRefresh(true))
	if err != nil {
		return fmt.Errorf("failed to delete documents by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete documents in index %s", res.String())
	}
	return nil
}

func loadDataIntoElasticsearch[Data any](lc client.LocusClient, data []Data, index string) error {
	metaMap, dataMap, err := client.ToMetaAndDataMap(data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return lc.BulkIndex(ctx, metaMap, dataMap, index)
}

func getAllQuery() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}
}
