/*
Copyright © 2019 the Strata authors.
This file is part of Strata.

Strata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Strata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Strata.  If not, see <http://www.gnu.org/licenses/>.
*/

package strata

import (
	"fmt"
	"math"
)

const (
	// DefaultFlowConstant converts area times pressure difference
	// [m²·Pa] into the fraction of a layer that moves in one hour.
	DefaultFlowConstant = 1.e-12

	// maxBackflow is the largest fraction that may move from a less
	// dense layer to a denser one in one hour.
	maxBackflow = 0.05
)

// ColumnID is the handle of a column within a World.
type ColumnID int

// LayerHandle identifies a layer by its column and its index in the
// column stack.
type LayerHandle struct {
	Column ColumnID
	Index  int
}

func (h LayerHandle) String() string { return fmt.Sprintf("%d:%d", h.Column, h.Index) }

// Resolver looks up the layer a handle refers to.
type Resolver interface {
	Layer(h LayerHandle) (*Layer, error)
}

// SharedSurface is the contact between two layers. The owner is the
// layer that built the surface; the tenant is the layer on the other
// side. The surface refers to both by handle only.
type SharedSurface struct {
	Owner, Tenant LayerHandle

	// Direction is the direction from the owner to the tenant.
	Direction Direction

	// Area is the true contact area [m²].
	Area float64

	// Midpoint is the elevation of the middle of the contact [m].
	Midpoint float64

	// Normal is the unit vector pointing from the owner to the tenant.
	Normal [3]float64

	differential float64
	built        bool
}

// NewSharedSurface returns a surface between owner and tenant.
func NewSharedSurface(owner, tenant LayerHandle, d Direction, area, midpoint float64) *SharedSurface {
	return &SharedSurface{
		Owner:     owner,
		Tenant:    tenant,
		Direction: d,
		Area:      area,
		Midpoint:  midpoint,
		Normal:    d.Normal(),
	}
}

func (s *SharedSurface) String() string {
	return fmt.Sprintf("%v->%v(%v)", s.Owner, s.Tenant, s.Direction)
}

// PressureDifferential returns the owner pressure minus the tenant
// pressure at the midpoint, as of the last build [Pa].
func (s *SharedSurface) PressureDifferential() float64 { return s.differential }

// Built reports whether a pressure differential is waiting to be used by Flow.
func (s *SharedSurface) Built() bool { return s.built }

func (s *SharedSurface) resolve(r Resolver) (owner, tenant *Layer, err error) {
	if owner, err = r.Layer(s.Owner); err != nil {
		return nil, nil, err
	}
	if tenant, err = r.Layer(s.Tenant); err != nil {
		return nil, nil, err
	}
	return owner, tenant, nil
}

// BuildPressureDifferential records the pressure difference across
// the surface. It must be followed by exactly one call to Flow.
func (s *SharedSurface) BuildPressureDifferential(r Resolver) error {
	if s.built {
		return &ProtocolError{Op: "BuildPressureDifferential", Surface: s.String(),
			Reason: "pressure differential has already been built and not used"}
	}
	owner, tenant, err := s.resolve(r)
	if err != nil {
		return err
	}
	d := owner.Pressure(s.Midpoint) - tenant.Pressure(s.Midpoint)
	if math.IsNaN(d) {
		return numericErr("pressure differential", d, s.String())
	}
	s.differential = d
	s.built = true
	return nil
}

// Discard drops a built pressure differential without flowing.
func (s *SharedSurface) Discard() { s.built = false }

// FlowResult describes the material moved across a surface.
type FlowResult struct {
	// Proportion is the fraction of the giving layer that moved.
	Proportion float64

	// Mols is the true amount moved [mol].
	Mols float64

	// FromOwner is true when the owner gave material to the tenant.
	FromOwner bool

	// Backflow is true when material moved from the less dense
	// layer toward the denser one.
	Backflow bool
}

// Flow moves air across the surface in response to the pressure
// differential from the last build. The amount moved never takes the
// two layers past equal molar density. Surfaces between any other
// layer types move nothing.
func (s *SharedSurface) Flow(r Resolver, flowConstant float64) (FlowResult, error) {
	if !s.built {
		return FlowResult{}, &ProtocolError{Op: "Flow", Surface: s.String(),
			Reason: "pressure differential has not been built"}
	}
	s.built = false

	owner, tenant, err := s.resolve(r)
	if err != nil {
		return FlowResult{}, err
	}
	if owner.Type != AirLayer || tenant.Type != AirLayer || s.differential == 0 {
		return FlowResult{}, nil
	}

	rate := s.Area * s.differential * flowConstant
	res := FlowResult{FromOwner: rate > 0}
	giving, receiving := owner.Mixture, tenant.Mixture
	dir := 1.
	if !res.FromOwner {
		giving, receiving = receiving, giving
		dir = -1
	}
	nG, nR := giving.TrueMols(), receiving.TrueMols()
	vG, vR := giving.TrueVolume(), receiving.TrueVolume()
	if !(vG+vR > 0) || !(vG > 0) {
		return FlowResult{}, numericErr("volume", vG+vR, s.String())
	}
	if nG <= 0 {
		return FlowResult{}, nil
	}

	// x is the amount that brings both layers to the same molar density.
	x := (nG*vR - nR*vG) / (vG + vR)
	if x > 0 {
		res.Proportion = math.Min(math.Abs(rate), x/nG)
	} else {
		res.Proportion = math.Min(math.Abs(rate), maxBackflow)
		res.Backflow = true
	}
	res.Mols = res.Proportion * nG
	moved := res.Proportion * vG
	if err := TransferMixture(receiving, giving, res.Proportion); err != nil {
		return FlowResult{}, err
	}

	if s.Area > 0 {
		speed := dir * moved / (s.Area * secondsPerHour)
		for _, m := range []*Mixture{giving, receiving} {
			v := m.Velocity()
			for i := range v {
				v[i] += speed * s.Normal[i]
			}
			m.SetVelocity(v)
		}
	}
	return res, nil
}
