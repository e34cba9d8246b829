package service

import (
	"context"
	"time"

	"precato/internal/precatorio/models"
	"precato/pkg/brdoc"
	dErrors "precato/pkg/domain-errors"
	"precato/pkg/requestcontext"
)

// ClienteInput carries the fields of a new cliente. CPF accepts a formatted
// or bare CPF or CNPJ; it is normalized to digits and checksum-validated.
type ClienteInput struct {
	CPF        string    `json:"cpf"`
	Nome       string    `json:"nome"`
	Nascimento time.Time `json:"nascimento"`
	Prioridade bool      `json:"prioridade"`
}

// RegisterCliente checksum-validates the document, normalizes it to digits
// and inserts the cliente. The digits become the natural key; a duplicate is
// a conflict.
func (s *Service) RegisterCliente(ctx context.Context, input ClienteInput) (*models.Cliente, error) {
	doc := brdoc.Normalize(input.CPF)
	switch brdoc.DocumentKind(doc) {
	case brdoc.KindCPF:
		if !brdoc.ValidateCPF(doc) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid cpf check digits")
		}
	case brdoc.KindCNPJ:
		if !brdoc.ValidateCNPJ(doc) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid cnpj check digits")
		}
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "document must have 11 digits (cpf) or 14 digits (cnpj)")
	}

	cliente, err := models.NewCliente(doc, input.Nome, input.Nascimento, input.Prioridade, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.CreateCliente(ctx, cliente); err != nil {
		if dErrors.HasCode(storeErr(err, ""), dErrors.CodeConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "a cliente with document %q already exists", doc)
		}
		return nil, storeErr(err, "cliente not found")
	}

	s.metrics.IncrementCreated("cliente")
	s.log(ctx, "cliente registered", "cpf", cliente.CPF, "nome", cliente.Nome)
	return cliente, nil
}

// GetCliente returns a cliente by document; raw gets normalized first so
// formatted and bare inputs resolve the same record.
func (s *Service) GetCliente(ctx context.Context, raw string) (*models.Cliente, error) {
	c, err := s.store.FindCliente(ctx, brdoc.Normalize(raw))
	if err != nil {
		return nil, storeErr(err, "cliente not found")
	}
	return c, nil
}

// LinkCliente associates a cliente with a precatório. Both sides must exist;
// linking twice is a conflict.
func (s *Service) LinkCliente(ctx context.Context, cnj, rawDoc string) error {
	cpf := brdoc.Normalize(rawDoc)
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindPrecatorio(ctx, cnj); err != nil {
			return storeErr(err, "precatorio not found")
		}
		if _, err := s.store.FindCliente(ctx, cpf); err != nil {
			return storeErr(err, "cliente not found")
		}
		if err := s.store.Link(ctx, cnj, cpf); err != nil {
			if dErrors.HasCode(storeErr(err, ""), dErrors.CodeConflict) {
				return dErrors.New(dErrors.CodeConflict, "cliente is already linked to this precatorio")
			}
			return storeErr(err, "precatorio not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log(ctx, "cliente linked", "cnj", cnj, "cpf", cpf)
	return nil
}

// UnlinkCliente removes the association. Alvarás and requerimentos the
// cliente holds on this precatório block the unlink, alvarás checked first.
func (s *Service) UnlinkCliente(ctx context.Context, cnj, rawDoc string) error {
	cpf := brdoc.Normalize(rawDoc)
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		linked, err := s.store.IsLinked(ctx, cnj, cpf)
		if err != nil {
			return storeErr(err, "precatorio not found")
		}
		if !linked {
			return dErrors.New(dErrors.CodeNotFound, "cliente is not linked to this precatorio")
		}

		count, err := s.store.CountAlvarasByLink(ctx, cnj, cpf)
		if err != nil {
			return storeErr(err, "precatorio not found")
		}
		if count > 0 {
			return dErrors.NewInUse("link", "alvaras", count)
		}
		count, err = s.store.CountRequerimentosByLink(ctx, cnj, cpf)
		if err != nil {
			return storeErr(err, "precatorio not found")
		}
		if count > 0 {
			return dErrors.NewInUse("link", "requerimentos", count)
		}

		return storeErr(s.store.Unlink(ctx, cnj, cpf), "cliente is not linked to this precatorio")
	})
	if err != nil {
		return err
	}

	s.log(ctx, "cliente unlinked", "cnj", cnj, "cpf", cpf)
	return nil
}

// DeleteCliente removes a cliente only when nothing references them: no
// precatório link, alvará or requerimento. The first non-empty category
// decides the rejection message.
func (s *Service) DeleteCliente(ctx context.Context, rawDoc string) (*models.Cliente, error) {
	cpf := brdoc.Normalize(rawDoc)
	var deleted *models.Cliente
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		cliente, err := s.store.FindCliente(ctx, cpf)
		if err != nil {
			return storeErr(err, "cliente not found")
		}

		checks := []struct {
			dependents string
			count      func(context.Context, string) (int, error)
		}{
			{"precatorios", s.store.CountPrecatoriosByCliente},
			{"alvaras", s.store.CountAlvarasByCliente},
			{"requerimentos", s.store.CountRequerimentosByCliente},
		}
		for _, check := range checks {
			count, err := check.count(ctx, cpf)
			if err != nil {
				return storeErr(err, "cliente not found")
			}
			if count > 0 {
				s.metrics.IncrementDeleteBlocked("cliente", check.dependents)
				return dErrors.NewInUse(`cliente "`+cliente.Nome+`"`, check.dependents, count)
			}
		}

		if err := s.store.DeleteCliente(ctx, cpf); err != nil {
			return storeErr(err, "cliente not found")
		}
		deleted = cliente
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDeleted("cliente")
	s.log(ctx, "cliente deleted", "cpf", cpf)
	return deleted, nil
}
