package mongo

import (
	"context"
	"testing"
	"time"

	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

func TestEventRepository_InsertEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	occurred := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CST", -6*3600))
	recorded := time.Date(2026, 3, 1, 15, 31, 0, 0, time.UTC)

	mt.Run("stores the status change", func(mt *mtest.T) {
		repo := &EventRepository{col: mt.Coll, now: func() time.Time { return recorded }}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertEvent(context.Background(), &domain.OrderEvent{
			OrderID:        "order-1",
			TrackingNumber: "99M-0001",
			UserID:         "admin-1",
			Status:         domain.StatusOnTheWay,
			Notes:          "left hub",
			OccurredAt:     occurred,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "insert" {
			t.Fatalf("expected an insert command, got %+v", started)
		}
		docs, err := started.Command.Lookup("documents").Array().Values()
		if err != nil || len(docs) != 1 {
			t.Fatalf("expected one document, got %d (%v)", len(docs), err)
		}
		doc := docs[0].Document()

		for field, want := range map[string]string{
			"order_id":        "order-1",
			"tracking_number": "99M-0001",
			"user_id":         "admin-1",
			"status":          "ON_THE_WAY",
			"notes":           "left hub",
		} {
			if got := doc.Lookup(field).StringValue(); got != want {
				t.Errorf("%s: got %q, want %q", field, got, want)
			}
		}
		if got := doc.Lookup("occurred_at").Time(); !got.Equal(occurred) {
			t.Errorf("occurred_at: got %v, want %v", got, occurred)
		}
		if got := doc.Lookup("recorded_at").Time(); !got.Equal(recorded) {
			t.Errorf("recorded_at: got %v, want %v", got, recorded)
		}
	})

	mt.Run("omits empty notes", func(mt *mtest.T) {
		repo := &EventRepository{col: mt.Coll, now: time.Now}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertEvent(context.Background(), &domain.OrderEvent{
			OrderID:    "order-2",
			Status:     domain.StatusPlaced,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		docs, _ := mt.GetStartedEvent().Command.Lookup("documents").Array().Values()
		if _, err := docs[0].Document().LookupErr("notes"); err == nil {
			t.Fatal("notes must not be stored when empty")
		}
	})

	mt.Run("returns write errors", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.InsertEvent(context.Background(), &domain.OrderEvent{OrderID: "order-3", Status: domain.StatusPlaced})
		if !driver.IsDuplicateKeyError(err) {
			t.Fatalf("expected the write error to surface, got %v", err)
		}
	})
}
