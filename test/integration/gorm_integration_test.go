package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"school-assist-be/internal/entity"
	"school-assist-be/internal/model"
	"school-assist-be/internal/repository/specification"
	"school-assist-be/internal/repository/unitofwork"
	"school-assist-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	if database.IsPostgres(gormDB) {
		require.NoError(t, gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.AdmissionRequest{}, &model.CorpusRecord{}, &model.EmailDelivery{}, &model.Report{}))

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())
	ctx := context.Background()

	t.Run("Admission round trip", func(t *testing.T) {
		sessionID := "it-" + uuid.NewString()
		err := uow.AdmissionRepository().Create(ctx, &entity.AdmissionRequest{
			SessionId:   sessionID,
			Domain:      "admission",
			StudentName: "Asha",
			Phone:       "9876543210",
			Address:     "Mysuru",
			Channel:     "web",
		})
		require.NoError(t, err)

		count, err := uow.AdmissionRepository().Count(ctx, specification.BySessionID{SessionID: sessionID})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Corpus upsert replaces rows in place", func(t *testing.T) {
		corpus := "it_" + uuid.NewString()[:8]
		defer uow.CorpusRecordRepository().DeleteByCorpus(ctx, corpus)

		vector := make([]float32, 768)
		vector[0] = 1
		record := func(doc string) []*entity.CorpusRecord {
			return []*entity.CorpusRecord{{
				Corpus:         corpus,
				RowKey:         "0",
				Document:       doc,
				Fields:         map[string]string{"School_Name": doc},
				EmbeddingValue: vector,
			}}
		}

		require.NoError(t, uow.CorpusRecordRepository().Upsert(ctx, record("first")))
		require.NoError(t, uow.CorpusRecordRepository().Upsert(ctx, record("second")))

		rows, err := uow.CorpusRecordRepository().FindAll(ctx, specification.ByCorpus{Corpus: corpus})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "second", rows[0].Document)

		if database.IsPostgres(gormDB) {
			hits, err := uow.CorpusRecordRepository().SearchSimilarWithScore(ctx, corpus, vector, 5, 0.5)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.InDelta(t, 1.0, hits[0].Similarity, 0.001)
		}
	})

	t.Run("Rolled back report is not stored", func(t *testing.T) {
		txUow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, txUow.Begin(ctx))

		reference := "COMP" + uuid.NewString()[:6]
		require.NoError(t, txUow.ReportRepository().Create(ctx, &entity.Report{
			ReferenceId: reference,
			Kind:        entity.ReportKindComplaint,
			Category:    "Infrastructure",
			Description: "Broken roof",
		}))
		require.NoError(t, txUow.Rollback())

		exists, err := uow.ReportRepository().ExistsByReference(ctx, reference)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}
