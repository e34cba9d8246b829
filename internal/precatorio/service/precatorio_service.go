package service

import (
	"context"

	"precato/internal/precatorio/models"
	"precato/pkg/brdoc"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/requestcontext"
)

// PrecatorioInput carries the fields of a new precatório. CNJ and Origem are
// raw CNJ case numbers; both are validated and cleaned before persisting.
type PrecatorioInput struct {
	CNJ         string  `json:"cnj"`
	Orcamento   int     `json:"orcamento"`
	Origem      string  `json:"origem"`
	ValorDeFace float64 `json:"valor_de_face"`
}

// Totals is the dashboard summary: how many records of each entity exist.
type Totals struct {
	Precatorios   int `json:"precatorios"`
	Clientes      int `json:"clientes"`
	Alvaras       int `json:"alvaras"`
	Requerimentos int `json:"requerimentos"`
}

// CreatePrecatorio validates both CNJ numbers and inserts the record. The
// cleaned CNJ becomes the natural key; a duplicate is a conflict.
func (s *Service) CreatePrecatorio(ctx context.Context, input PrecatorioInput) (*models.Precatorio, error) {
	cnj, err := brdoc.ValidateCNJ(input.CNJ)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	origem, err := brdoc.ValidateCNJ(input.Origem)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "origem: %s", err.Error())
	}

	precatorio, err := models.NewPrecatorio(cnj, input.Orcamento, origem, input.ValorDeFace, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.CreatePrecatorio(ctx, precatorio); err != nil {
		if dErrors.HasCode(storeErr(err, ""), dErrors.CodeConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "a precatorio with cnj %q already exists", cnj)
		}
		return nil, storeErr(err, "precatorio not found")
	}

	s.metrics.IncrementCreated("precatorio")
	s.log(ctx, "precatorio created", "cnj", precatorio.CNJ, "orcamento", precatorio.Orcamento)
	return precatorio, nil
}

// GetPrecatorio returns a precatório by its CNJ.
func (s *Service) GetPrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error) {
	p, err := s.store.FindPrecatorio(ctx, cnj)
	if err != nil {
		return nil, storeErr(err, "precatorio not found")
	}
	return p, nil
}

// DeletePrecatorio removes a precatório only when nothing references it.
// Linked clientes are checked first, then alvarás, then requerimentos; the
// first non-empty category decides the rejection message. The whole guard
// plus the delete run in one atomic boundary.
func (s *Service) DeletePrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error) {
	var deleted *models.Precatorio
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		precatorio, err := s.store.FindPrecatorio(ctx, cnj)
		if err != nil {
			return storeErr(err, "precatorio not found")
		}

		checks := []struct {
			dependents string
			count      func(context.Context, string) (int, error)
		}{
			{"clientes", s.store.CountClientesByPrecatorio},
			{"alvaras", s.store.CountAlvarasByPrecatorio},
			{"requerimentos", s.store.CountRequerimentosByPrecatorio},
		}
		for _, check := range checks {
			count, err := check.count(ctx, cnj)
			if err != nil {
				return storeErr(err, "precatorio not found")
			}
			if count > 0 {
				s.metrics.IncrementDeleteBlocked("precatorio", check.dependents)
				return dErrors.NewInUse(`precatorio "`+cnj+`"`, check.dependents, count)
			}
		}

		if err := s.store.DeletePrecatorio(ctx, cnj); err != nil {
			return storeErr(err, "precatorio not found")
		}
		deleted = precatorio
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDeleted("precatorio")
	s.log(ctx, "precatorio deleted", "cnj", cnj)
	return deleted, nil
}

// GetTotals returns the dashboard record counts.
func (s *Service) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	var err error
	if t.Precatorios, err = s.store.CountPrecatorios(ctx); err != nil {
		return nil, storeErr(err, "totals unavailable")
	}
	if t.Clientes, err = s.store.CountClientes(ctx); err != nil {
		return nil, storeErr(err, "totals unavailable")
	}
	if t.Alvaras, err = s.store.CountAlvaras(ctx); err != nil {
		return nil, storeErr(err, "totals unavailable")
	}
	if t.Requerimentos, err = s.store.CountRequerimentos(ctx); err != nil {
		return nil, storeErr(err, "totals unavailable")
	}
	return &t, nil
}
