package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"", ModelLinearHeight, false},
		{"linear", ModelLinearHeight, false},
		{"Linear-Height", ModelLinearHeight, false},
		{"cube", ModelCube, false},
		{"powerlaw", ModelPowerLaw, false},
		{"power-law", ModelPowerLaw, false},
		{"sphere", ModelLinearHeight, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				round, err := ParseModel(got.String())
				require.NoError(t, err)
				assert.Equal(t, got, round)
			}
		})
	}
}

func TestDimensionsLinearHeight(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name       string
		loc, count int64
		want       Dims
	}{
		{"regular", 135, 10, Dims{Width: 135, Depth: 135, Height: 200}},
		{"zero loc", 0, 1, Dims{Width: 5, Depth: 5, Height: 20}},
		{"zero count", 40, 0, Dims{Width: 40, Depth: 40, Height: 0.5}},
		{"tiny loc", 2, 0, Dims{Width: 5, Depth: 5, Height: 0.5}},
		{"negative coerced", -10, -3, Dims{Width: 5, Depth: 5, Height: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := Dimensions(tt.loc, tt.count, p)
			assert.Equal(t, tt.want, got)
			assert.False(t, diag.Clamped)
		})
	}
}

func TestDimensionsCube(t *testing.T) {
	p := DefaultParams()
	p.Model = ModelCube

	got, _ := Dimensions(50, 999, p)
	assert.Equal(t, Dims{Width: 50, Depth: 50, Height: 50}, got, "count must not affect cube size")

	got, _ = Dimensions(0, 0, p)
	assert.Equal(t, Dims{Width: 5, Depth: 5, Height: 5}, got)
}

func TestDimensionsPowerLaw(t *testing.T) {
	p := DefaultParams()
	p.Model = ModelPowerLaw

	t.Run("taller and narrower with activity", func(t *testing.T) {
		quiet, _ := Dimensions(100, 1, p)
		busy, _ := Dimensions(100, 32, p)
		assert.Greater(t, busy.Height, quiet.Height)
		assert.Less(t, busy.Width, quiet.Width)
	})

	t.Run("formula", func(t *testing.T) {
		got, diag := Dimensions(100, 32, p)
		assert.False(t, diag.Clamped)
		assert.InDelta(t, 100*math.Pow(32, 0.2), got.Height, 1e-9)
		assert.InDelta(t, 100*math.Pow(32, -0.1), got.Width, 1e-9)
		assert.Equal(t, got.Width, got.Depth)
	})

	t.Run("zero metrics floored silently", func(t *testing.T) {
		got, diag := Dimensions(0, 0, p)
		assert.False(t, diag.Clamped)
		assert.Equal(t, Dims{Width: 5, Depth: 5, Height: 0.5}, got)
	})

	t.Run("invalid exponent is clamped with diagnostic", func(t *testing.T) {
		bad := p
		bad.Exponent = math.NaN()
		got, diag := Dimensions(100, 4, bad)
		assert.True(t, diag.Clamped)
		assert.NotEmpty(t, diag.Reason)
		assert.Equal(t, Dims{Width: 5, Depth: 5, Height: 0.5}, got)
	})

	t.Run("overflow is clamped with diagnostic", func(t *testing.T) {
		huge := p
		huge.Exponent = 400
		got, diag := Dimensions(10, 1<<40, huge)
		assert.True(t, diag.Clamped)
		assert.Greater(t, got.Height, 0.0)
		assert.False(t, math.IsInf(got.Height, 0))
	})
}

func TestDimensionsAlwaysPositive(t *testing.T) {
	for _, m := range []Model{ModelLinearHeight, ModelCube, ModelPowerLaw} {
		p := DefaultParams()
		p.Model = m
		for _, loc := range []int64{0, 1, 7, 5000} {
			for _, count := range []int64{0, 1, 91} {
				d, _ := Dimensions(loc, count, p)
				assert.Greater(t, d.Width, 0.0, "%s loc=%d count=%d", m, loc, count)
				assert.Greater(t, d.Depth, 0.0, "%s loc=%d count=%d", m, loc, count)
				assert.Greater(t, d.Height, 0.0, "%s loc=%d count=%d", m, loc, count)
			}
		}
	}
}

func TestDimensionsUnusableFloorsFallBack(t *testing.T) {
	d, _ := Dimensions(0, 0, Params{})
	assert.Equal(t, Dims{Width: DefaultMinLayoutDimension, Depth: DefaultMinLayoutDimension, Height: DefaultMinVisibleHeight}, d)
}
