package elasticsearch

import (
	"context"
	"testing"
	"time"

	"github.com/Avi18971911/Locus/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Locus/internal/db/elasticsearch/client"
	"github.com/Avi18971911/Locus/internal/db/write_buffer"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	originQueryService "github.com/Avi18971911/Locus/internal/query_server/service/origin"
	"github.com/stretchr/testify/assert"
)

func makeOrigin(id string, clusterId uint64, originTime, createdAt time.Time) originModel.Origin {
	return originModel.Origin{
		PublicId:         id,
		ClusterId:        clusterId,
		Latitude:         46.5,
		Longitude:        8.1,
		Time:             originTime,
		MethodId:         originModel.WeightedAverageMethod,
		Type:             originModel.CentroidOriginType,
		EvaluationMode:   originModel.AutomaticEvaluationMode,
		EvaluationStatus: originModel.PreliminaryEvaluationStatus,
		CreationInfo: originModel.CreationInfo{
			AgencyId:         "LOCUS",
			CreationTime:     createdAt,
			ModificationTime: createdAt,
		},
	}
}

func TestOriginStore(t *testing.T) {
	if es == nil {
		t.Error("es is uninitialized or otherwise nil")
	}
	lc := client.NewLocusClientImpl(es, client.Immediate)
	qs := originQueryService.NewOriginService(lc, logger)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should return flushed origins newest first", func(t *testing.T) {
		err := deleteAllDocumentsFromIndex(es, bootstrapper.OriginIndexName)
		if err != nil {
			t.Errorf("Failed to delete all documents: %v", err)
		}
		buffer := write_buffer.NewDatabaseWriteBufferImpl[originModel.Origin](
			lc,
			bootstrapper.OriginIndexName,
			10,
			logger,
		)
		publisher := originService.NewDatabasePublisher(buffer)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		older := makeOrigin("Origin/older", 1, base, base.Add(time.Minute))
		newer := makeOrigin("Origin/newer", 2, base.Add(time.Second), base.Add(2*time.Minute))
		assert.NoError(t, publisher.Publish(ctx, older))
		assert.NoError(t, publisher.Publish(ctx, newer))
		assert.NoError(t, publisher.Flush(ctx))

		origins, err := qs.GetOrigins(ctx, originQueryService.SearchParams{})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(origins))
		if len(origins) == 2 {
			assert.Equal(t, "Origin/newer", origins[0].PublicId)
			assert.Equal(t, "Origin/older", origins[1].PublicId)
		}
	})

	t.Run("should filter by cluster id and origin time", func(t *testing.T) {
		err := deleteAllDocumentsFromIndex(es, bootstrapper.OriginIndexName)
		if err != nil {
			t.Errorf("Failed to delete all documents: %v", err)
		}
		origins := []originModel.Origin{
			makeOrigin("Origin/a", 7, base, base),
			makeOrigin("Origin/b", 7, base.Add(time.Hour), base.Add(time.Hour)),
			makeOrigin("Origin/c", 8, base, base),
		}
		err = loadDataIntoElasticsearch(lc, origins, bootstrapper.OriginIndexName)
		if err != nil {
			t.Error("Failed to load origins into elasticsearch")
		}
		clusterId := uint64(7)
		endTime := base.Add(time.Minute).Format(time.RFC3339)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := qs.GetOrigins(ctx, originQueryService.SearchParams{
			ClusterId: &clusterId,
			EndTime:   &endTime,
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(res))
		if len(res) == 1 {
			assert.Equal(t, "Origin/a", res[0].PublicId)
		}
	})
}

func TestPickStore(t *testing.T) {
	if es == nil {
		t.Error("es is uninitialized or otherwise nil")
	}
	lc := client.NewLocusClientImpl(es, client.Immediate)

	t.Run("should index buffered picks under their ids", func(t *testing.T) {
		err := deleteAllDocumentsFromIndex(es, bootstrapper.PickIndexName)
		if err != nil {
			t.Errorf("Failed to delete all documents: %v", err)
		}
		buffer := write_buffer.NewDatabaseWriteBufferImpl[pickModel.Pick](
			lc,
			bootstrapper.PickIndexName,
			10,
			logger,
		)
		buffer.WriteToBuffer([]pickModel.Pick{
			{
				Id:         "pick-1",
				WaveformID: pickModel.WaveformID{NetworkCode: "CH", StationCode: "AAA"},
				Time:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				PhaseHint:  "P",
			},
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		assert.NoError(t, buffer.Flush(ctx))

		size := 10
		res, err := lc.Search(ctx, `{"query":{"match_all":{}}}`, []string{bootstrapper.PickIndexName}, &size)
		assert.NoError(t, err)
		picks, err := client.FromDocuments[pickModel.Pick](res)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(picks))
		if len(picks) == 1 {
			assert.Equal(t, "pick-1", picks[0].Id)
			assert.Equal(t, "AAA", picks[0].WaveformID.StationCode)
		}
	})
}
