package redis

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/cardioai/assessd/internal/db"
)

func TestBuildTagsFilter(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"empty", nil, ""},
		{"single", map[string]string{"status": "pending_review"}, "@status:{pending_review}"},
		{
			"sorted keys",
			map[string]string{"status": "reviewed", "country": "US"},
			"@country:{US} @status:{reviewed}",
		},
		{
			"escaped value",
			map[string]string{"country": "US-East"},
			`@country:{US\-East}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildTagsFilter(tt.tags); got != tt.want {
				t.Errorf("buildTagsFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVectorToBytes(t *testing.T) {
	vec := []float32{0.5, -1.25, 3}
	got := vectorToBytes(vec)
	if len(got) != len(vec)*4 {
		t.Fatalf("len = %d, want %d", len(got), len(vec)*4)
	}
	for i, f := range vec {
		bits := binary.LittleEndian.Uint32([]byte(got)[i*4:])
		if math.Float32frombits(bits) != f {
			t.Errorf("element %d = %v, want %v", i, math.Float32frombits(bits), f)
		}
	}
}

func TestBuildCreateArgs(t *testing.T) {
	def := &db.IndexDefinition{
		Name:        "assessd:assessment:idx",
		StorageType: db.StorageJSON,
		Prefixes:    []string{"assessd:assessment:"},
		Fields: []db.IndexField{
			{Name: "$.status", Alias: "status", Type: db.IndexFieldTag},
			{Name: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric, Sortable: true},
			{
				Name: "$.embedding", Alias: db.VectorField, Type: db.IndexFieldVector,
				VectorAlgo: db.VectorFlat, VectorDim: 384, VectorDistance: db.DistanceCosine,
			},
		},
	}

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("buildCreateArgs() error = %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"ON JSON",
		"PREFIX 1 assessd:assessment:",
		"$.status AS status TAG",
		"$.created_at AS created_at NUMERIC SORTABLE",
		"$.embedding AS embedding VECTOR FLAT",
		"DIM 384",
		"DISTANCE_METRIC COSINE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q in %q", want, joined)
		}
	}
}
