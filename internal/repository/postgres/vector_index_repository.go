package postgres

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"math"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VectorIndexRepository is an exact nearest-neighbour search over the
// embedding column. It stands in for a dedicated vector store on small
// catalogs; every eligible row is scored.
type VectorIndexRepository struct {
	DB *gorm.DB
}

func NewVectorIndexRepository(db *gorm.DB) *VectorIndexRepository {
	return &VectorIndexRepository{DB: db}
}

type embeddingRow struct {
	ID        uint64                       `gorm:"column:id"`
	Embedding datatypes.JSONSlice[float32] `gorm:"column:embedding"`
}

// Search scores every filtered row. numCandidates has no effect on an exact scan.
func (r *VectorIndexRepository) Search(
	ctx context.Context,
	vector []float32,
	numCandidates, limit int,
	filter domain.VectorFilter,
) ([]domain.VectorMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Select("id", "embedding").
		Where("embedding IS NOT NULL").
		Where("start_date > ?", filter.StartAfter)
	if filter.SignupsOpenOnly {
		q = q.Where("signups_open = ?", true)
	}

	var rows []embeddingRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}

	return rankByCosine(vector, rows, limit), nil
}

func rankByCosine(vector []float32, rows []embeddingRow, limit int) []domain.VectorMatch {
	matches := make([]domain.VectorMatch, 0, len(rows))
	for _, row := range rows {
		cos, ok := cosineSimilarity(vector, row.Embedding)
		if !ok {
			continue
		}
		matches = append(matches, domain.VectorMatch{EventID: row.ID, Score: (1 + cos) / 2})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].EventID < matches[j].EventID
		}
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// cosineSimilarity is false when the lengths differ or either vector is zero.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}

	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return max(-1, min(1, cos)), true
}
