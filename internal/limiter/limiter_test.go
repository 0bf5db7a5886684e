package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid limit only",
			cfg:     Config{Limit: 10},
			wantErr: false,
		},
		{
			name:    "valid offset only",
			cfg:     Config{Offset: 5},
			wantErr: false,
		},
		{
			name:    "valid limit and offset",
			cfg:     Config{Limit: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "valid tail only",
			cfg:     Config{Tail: 10},
			wantErr: false,
		},
		{
			name:    "tail ignores offset (valid)",
			cfg:     Config{Tail: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "limit and tail mutually exclusive",
			cfg:     Config{Limit: 10, Tail: 5},
			wantErr: true,
			errMsg:  "mutually exclusive",
		},
		{
			name:    "negative limit invalid",
			cfg:     Config{Limit: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative offset invalid",
			cfg:     Config{Offset: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative tail invalid",
			cfg:     Config{Tail: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "zero values valid",
			cfg:     Config{Limit: 0, Offset: 0, Tail: 0},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantBool bool
	}{
		{
			name:     "no flags set",
			cfg:      Config{},
			wantBool: false,
		},
		{
			name:     "limit set",
			cfg:      Config{Limit: 10},
			wantBool: true,
		},
		{
			name:     "offset set",
			cfg:      Config{Offset: 5},
			wantBool: true,
		},
		{
			name:     "tail set",
			cfg:      Config{Tail: 10},
			wantBool: true,
		},
		{
			name:     "all flags set",
			cfg:      Config{Limit: 10, Offset: 5, Tail: 0}, // tail not really set
			wantBool: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.IsActive()
			assert.Equal(t, tt.wantBool, got)
		})
	}
}

func ints(n ...int) []int { return n }

func TestSlice(t *testing.T) {
	arr := ints(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{
			name: "limit only",
			cfg:  Config{Limit: 3},
			want: ints(1, 2, 3),
		},
		{
			name: "offset only",
			cfg:  Config{Offset: 5},
			want: ints(6, 7, 8, 9, 10),
		},
		{
			name: "limit and offset",
			cfg:  Config{Limit: 3, Offset: 2},
			want: ints(3, 4, 5),
		},
		{
			name: "tail only",
			cfg:  Config{Tail: 3},
			want: ints(8, 9, 10),
		},
		{
			name: "offset larger than array",
			cfg:  Config{Offset: 20},
			want: []int{},
		},
		{
			name: "limit larger than remaining",
			cfg:  Config{Limit: 100, Offset: 5},
			want: ints(6, 7, 8, 9, 10),
		},
		{
			name: "tail larger than array",
			cfg:  Config{Tail: 100},
			want: arr,
		},
		{
			name: "limit zero (unlimited)",
			cfg:  Config{Limit: 0},
			want: arr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(tt.cfg, arr))
		})
	}
}

func TestApplyRecords(t *testing.T) {
	data := make([]record.Record, 5)
	for i := range data {
		data[i] = record.NewOrdered(record.Field{Key: "n", Value: i})
	}

	got := Config{Offset: 1, Limit: 2}.Apply(data)
	require.Len(t, got, 2)
	assert.Same(t, data[1], got[0])
	assert.Same(t, data[2], got[1])

	assert.Equal(t, data, Config{}.Apply(data))
	assert.Empty(t, Config{Limit: 3}.Apply(nil))
}

func TestBounds(t *testing.T) {
	start, end := Config{Offset: 3}.Bounds(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)

	start, end = Config{Tail: 0}.Bounds(5)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}

func TestTailIgnoresOffset(t *testing.T) {
	arr := ints(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	// Even though offset is set, it should be ignored when tail is used
	result := Slice(Config{Tail: 3, Offset: 5}, arr)
	assert.Equal(t, ints(8, 9, 10), result)
}
