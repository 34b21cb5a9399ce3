package services

import (
	"io"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/storage"
	"gorm.io/gorm"
)

// EvidenceFile is one artifact submitted with a closing action.
type EvidenceFile struct {
	Kind     string
	Filename string
	Content  io.Reader
}

// RecordEvidence stores each artifact, computes its content hash over the
// full byte stream, persists the rows in the caller's transaction, and
// appends exactly one audit entry covering the batch. Rows are
// append-only. Storage I/O errors propagate uncaught; an aborted
// transaction can strand files on disk but never leaves a dangling row.
func RecordEvidence(tx *gorm.DB, actor *models.User, order *models.ServiceOrder, files []EvidenceFile, audit *AuditTrail) ([]models.Evidence, error) {
	rows := make([]models.Evidence, 0, len(files))
	registered := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		ref, hash, err := storage.SaveEvidenceFile(f.Filename, f.Content)
		if err != nil {
			return nil, err
		}
		row := models.Evidence{
			OrderID:   order.ID,
			Kind:      f.Kind,
			FileRef:   ref,
			FileHash:  hash,
			CreatedAt: audit.Clock.Now(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		rows = append(rows, row)
		registered = append(registered, map[string]interface{}{
			"kind":      f.Kind,
			"file_ref":  ref,
			"file_hash": hash,
		})
	}

	_, err := audit.Append(tx, actor, order, "register_evidence", nil, map[string]interface{}{
		"evidences": registered,
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
