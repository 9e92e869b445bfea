package imrender

import (
	"image"
	"math"
	"testing"
)

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -5), Pt(1, 1), Pt(11, -4)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90deg", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"translate then scale", Translate(10, 0).Multiply(Scale(2, 2)), Pt(1, 1), Pt(12, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() || !Translate(0, 0).Multiply(Scale(1, 1)).IsIdentity() {
		t.Error("identity transforms not recognized")
	}
	if Translate(1, 0).IsIdentity() || (Matrix{}).IsIdentity() {
		t.Error("non-identity transform reported as identity")
	}
}

func TestMatrixScaleFactor(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want float64
	}{
		{"identity", Identity(), 1},
		{"uniform", Scale(3, 3), 3},
		{"non-uniform", Scale(2, 5), 5},
		{"rotation", Rotate(0.7), 1},
		{"translation", Translate(100, 100), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.ScaleFactor(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScaleFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatrixDeviceBounds(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		r    Rect
		want image.Rectangle
	}{
		{"identity", Identity(), R(0.5, 0.5, 10, 10), image.Rect(0, 0, 11, 11)},
		{"translated", Translate(5, -3), R(0, 0, 10, 10), image.Rect(5, -3, 15, 7)},
		{"scaled", Scale(2, 2), R(1, 1, 4, 4), image.Rect(2, 2, 10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.DeviceBounds(tt.r); got != tt.want {
				t.Errorf("DeviceBounds = %v, want %v", got, tt.want)
			}
		})
	}
}
