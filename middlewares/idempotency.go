package middlewares

import (
	"errors"
	"log"
	"strings"
	"time"

	"taskboard-backend/apperrors"
	"taskboard-backend/config"
	"taskboard-backend/database"
	"taskboard-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const idempotencyHeader = "Idempotency-Key"

// Idempotency guards a mutating create endpoint with store-and-replay
// semantics. The header is mandatory on routes carrying this middleware.
//
// Phase 1 claims the scoped key (or learns about a prior attempt) in a short
// transaction; the unique index on scoped_key decides races. Phase 2 stores
// the captured response after the handler ran, best-effort: the primary
// mutation's success is never rolled back because the cache write failed.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return apperrors.IdempotencyKeyMissing()
		}
		if len(key) > 128 {
			return apperrors.Validation("Idempotency-Key too long")
		}

		scope := CallerScope(c)
		method := strings.ToUpper(c.Method())
		path := c.Path()
		fingerprint := models.BodyFingerprint(c.Body())
		scoped := models.ScopedIdempotencyKey(method, path, scope, key)
		ttl := config.IdempotencyTTL()
		now := time.Now().UTC()

		// ---- Phase 1: claim the key or resolve the prior attempt.
		var replay *models.IdempotencyRecord
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var existing models.IdempotencyRecord
			err := tx.Where("scoped_key = ?", scoped).First(&existing).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && existing.Expired(now) {
				// TTL elapsed: the old record is treated as absent.
				if e := tx.Delete(&existing).Error; e != nil {
					return e
				}
				err = gorm.ErrRecordNotFound
			}

			if errors.Is(err, gorm.ErrRecordNotFound) {
				rec := models.IdempotencyRecord{
					ScopedKey:   scoped,
					RawKey:      key,
					CallerScope: scope,
					Method:      method,
					Path:        path,
					Fingerprint: fingerprint,
					ExpiresAt:   now.Add(ttl),
				}
				if e := tx.Create(&rec).Error; e != nil {
					// Unique race: a concurrent retry claimed the key between
					// our read and write. Re-read and fall through to the
					// existing-record handling.
					if e2 := tx.Where("scoped_key = ?", scoped).First(&existing).Error; e2 != nil {
						return e
					}
				} else {
					// MISS: we own the claim; run the handler.
					return nil
				}
			}

			if existing.Fingerprint != fingerprint {
				return apperrors.IdempotencyConflict()
			}
			if existing.Pending() {
				// The winner has not committed yet; fail fast rather than
				// block behind it.
				return apperrors.IdempotencyInFlight()
			}
			replay = &existing
			return nil
		})
		if err != nil {
			return err
		}
		if replay != nil {
			// REPLAY: the stored body verbatim; an original 201 comes back
			// as 200 to signal "already done".
			status := replay.ResponseStatus
			if status == fiber.StatusCreated {
				status = fiber.StatusOK
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(status).Send(replay.ResponseBody)
		}

		if err := c.Next(); err != nil {
			// The handler errored before producing a response; release the
			// claim so a corrected retry is a fresh miss.
			releaseClaim(scoped)
			return err
		}

		// ---- Phase 2: store (or release) the captured response.
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			releaseClaim(scoped)
			return nil
		}
		body := c.Response().Body()
		blob := make([]byte, len(body))
		copy(blob, body)
		completed := time.Now().UTC()
		if err := database.DB.Model(&models.IdempotencyRecord{}).
			Where("scoped_key = ?", scoped).
			Updates(map[string]any{
				"response_status": status,
				"response_body":   datatypes.JSON(blob),
				"expires_at":      completed.Add(ttl),
				"completed_at":    &completed,
			}).Error; err != nil {
			// Best-effort: a future retry then behaves as a fresh miss.
			log.Printf("idempotency: storing response for %s %s failed: %v", method, path, err)
		}
		return nil
	}
}

func releaseClaim(scoped string) {
	if err := database.DB.Where("scoped_key = ?", scoped).Delete(&models.IdempotencyRecord{}).Error; err != nil {
		log.Printf("idempotency: releasing claim failed: %v", err)
	}
}
