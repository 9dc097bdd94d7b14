package service

import (
	"context"
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.ClientFilter) (*dto.ListResponse[dto.ClientResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	// Delete is reserved to administrators and refused while documents
	// reference the client.
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func clientVisible(who identity.Identity) error {
	if policy.Resolve(who, policy.ResourceClient).Visibility == policy.None {
		return apierror.NotFound("client not found")
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, who identity.Identity, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := clientVisible(who); err != nil {
		return nil, apierror.Forbidden("you are not allowed to register clients")
	}
	if err := checkContact(req.ClientType, req.ClientContact); err != nil {
		return nil, err
	}
	c := &model.Client{
		Name:       repository.NormalizeName(req.Name),
		ClientType: req.ClientType,
		Address:    req.Address,
		Notes:      req.Notes,
	}
	applyContact(c, req.ClientContact)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.From(err)
	}
	return toClientResponse(c), nil
}

func (s *clientService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ClientResponse, error) {
	if err := clientVisible(who); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "client")
	}
	return toClientResponse(c), nil
}

func (s *clientService) List(ctx context.Context, who identity.Identity, filter dto.ClientFilter) (*dto.ListResponse[dto.ClientResponse], error) {
	filter.Normalize()
	if clientVisible(who) != nil {
		return &dto.ListResponse[dto.ClientResponse]{Data: []dto.ClientResponse{}, Skip: filter.Skip, Limit: filter.Limit}, nil
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.ClientResponse, len(rows))
	for i := range rows {
		data[i] = *toClientResponse(&rows[i])
	}
	return &dto.ListResponse[dto.ClientResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *clientService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	if err := clientVisible(who); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "client")
	}
	if req.Name != nil {
		c.Name = repository.NormalizeName(*req.Name)
	}
	if req.ClientType != nil && *req.ClientType != c.ClientType {
		c.ClientType = *req.ClientType
		// contact fields of the previous kind no longer apply
		if c.ClientType == model.ClientIndividual {
			c.CompanyName, c.BusinessNumber, c.RepresentativeName, c.CompanyPhone, c.CompanyEmail = nil, nil, nil, nil, nil
		} else {
			c.PersonalName, c.PersonalPhone, c.PersonalEmail = nil, nil, nil
		}
	}
	if err := checkContact(c.ClientType, req.ClientContact); err != nil {
		return nil, err
	}
	mergeContact(c, req.ClientContact)
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.From(err)
	}
	return toClientResponse(c), nil
}

func (s *clientService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	if !who.Admin() {
		return apierror.Forbidden("only administrators can delete clients")
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.ReferencesTx(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict(fmt.Sprintf("client is referenced by %d document(s)", n))
		}
		return notFoundAs(s.repo.DeleteTx(tx, id), "client")
	})
	if err != nil {
		return apierror.From(err)
	}
	return nil
}

// checkContact rejects contact fields that do not belong to kind.
func checkContact(kind string, in dto.ClientContact) error {
	fields := make(map[string]string)
	if kind == model.ClientIndividual {
		for name, v := range map[string]*string{
			"company_name":        in.CompanyName,
			"business_number":     in.BusinessNumber,
			"representative_name": in.RepresentativeName,
			"company_phone":       in.CompanyPhone,
			"company_email":       in.CompanyEmail,
		} {
			if v != nil {
				fields[name] = "excluded_with_individual"
			}
		}
	} else {
		for name, v := range map[string]*string{
			"personal_name":  in.PersonalName,
			"personal_phone": in.PersonalPhone,
			"personal_email": in.PersonalEmail,
		} {
			if v != nil {
				fields[name] = "excluded_with_" + kind
			}
		}
	}
	if len(fields) > 0 {
		return apierror.Validation("contact fields do not match the client type", fields)
	}
	return nil
}

func applyContact(c *model.Client, in dto.ClientContact) {
	c.PersonalName = in.PersonalName
	c.PersonalPhone = in.PersonalPhone
	c.PersonalEmail = in.PersonalEmail
	c.CompanyName = in.CompanyName
	c.BusinessNumber = in.BusinessNumber
	c.RepresentativeName = in.RepresentativeName
	c.CompanyPhone = in.CompanyPhone
	c.CompanyEmail = in.CompanyEmail
}

func mergeContact(c *model.Client, in dto.ClientContact) {
	for _, f := range []struct {
		dst **string
		src *string
	}{
		{&c.PersonalName, in.PersonalName},
		{&c.PersonalPhone, in.PersonalPhone},
		{&c.PersonalEmail, in.PersonalEmail},
		{&c.CompanyName, in.CompanyName},
		{&c.BusinessNumber, in.BusinessNumber},
		{&c.RepresentativeName, in.RepresentativeName},
		{&c.CompanyPhone, in.CompanyPhone},
		{&c.CompanyEmail, in.CompanyEmail},
	} {
		if f.src != nil {
			*f.dst = f.src
		}
	}
}

func toClientResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		ClientType: c.ClientType,
		Address:    c.Address,
		Notes:      c.Notes,
		ClientContact: dto.ClientContact{
			PersonalName:       c.PersonalName,
			PersonalPhone:      c.PersonalPhone,
			PersonalEmail:      c.PersonalEmail,
			CompanyName:        c.CompanyName,
			BusinessNumber:     c.BusinessNumber,
			RepresentativeName: c.RepresentativeName,
			CompanyPhone:       c.CompanyPhone,
			CompanyEmail:       c.CompanyEmail,
		},
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}
