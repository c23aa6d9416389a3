package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/domain/orders"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// FulfillmentAudit persists order fulfillment events. Payloads above the
// threshold are zstd-compressed before storage.
type FulfillmentAudit struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// Compile-time check that FulfillmentAudit implements orders.AuditTrail.
var _ orders.AuditTrail = (*FulfillmentAudit)(nil)

// NewFulfillmentAudit creates the audit writer.
func NewFulfillmentAudit(txManager *TxManager) (*FulfillmentAudit, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &FulfillmentAudit{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements orders.AuditTrail.
func (s *FulfillmentAudit) Record(ctx context.Context, event orders.AuditEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	algo := CompressionNone
	var compressed []byte
	if len(payload) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO fulfillment_audit (
			id, order_id, line_id, action, actor_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		id.New(), event.OrderID, event.LineID, event.Action, event.ActorID,
		payload, compressed, algo, event.At,
	)
	return err
}

// History retrieves the audit trail for one order, newest first.
func (s *FulfillmentAudit) History(ctx context.Context, orderID id.ID, limit int) ([]orders.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	sql := `
		SELECT payload, payload_compressed, compression_algo
		FROM fulfillment_audit
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var events []orders.AuditEvent
	for rows.Next() {
		var (
			payload    []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(&payload, &compressed, &algo); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			payload, err = s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit payload: %w", err)
			}
		}

		var event orders.AuditEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
