package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/k-obata-3/leave-connect-api/internal/events"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// pendingApprovalsKey is the per-approver counter behind the header badge in
// the frontend. Submits increment it, every other workflow event decrements.
func pendingApprovalsKey(companyID, approverID int64) string {
	return fmt.Sprintf("pending_approvals:%d:%d", companyID, approverID)
}

// ConsumeApplicationWorkflow keeps the per-approver pending counters in Redis
// in step with the workflow. The producer fills ApproverIDs with exactly the
// approvers whose actionable queue changed, so applying the delta here is a
// plain increment or decrement per id.
func ConsumeApplicationWorkflow(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.application_workflow")
	log.Info("application workflow consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("application workflow consumer stopped")
				return
			}
			log.Error("fetch application workflow message failed", zap.Error(err))
			continue
		}

		var event events.ApplicationWorkflowEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode application workflow event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := applyPendingDelta(ctx, rdb, event); err != nil {
			log.Error("update pending counters failed",
				zap.String("event_type", event.EventType),
				zap.Int64("application_id", event.ApplicationID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit application workflow message failed", zap.Error(err))
			continue
		}

		log.Info("pending counters updated",
			zap.String("event_type", event.EventType),
			zap.Int64("application_id", event.ApplicationID),
			zap.Int("approver_count", len(event.ApproverIDs)),
		)
	}
}

func applyPendingDelta(ctx context.Context, rdb *redis.Client, event events.ApplicationWorkflowEvent) error {
	for _, approverID := range event.ApproverIDs {
		key := pendingApprovalsKey(event.CompanyID, approverID)

		var err error
		if event.EventType == events.EventApplicationSubmitted {
			err = rdb.Incr(ctx, key).Err()
		} else {
			var val int64
			val, err = rdb.Decr(ctx, key).Result()
			if err == nil && val < 0 {
				// A replayed decrement must not leave a negative badge.
				err = rdb.Set(ctx, key, 0, 0).Err()
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
