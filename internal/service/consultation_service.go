package service

import (
	"context"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ConsultationResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.ConsultationFilter) (*dto.ListResponse[dto.ConsultationResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type consultationService struct {
	repo    repository.ConsultationRepository
	clients repository.ClientRepository
}

func NewConsultationService(repo repository.ConsultationRepository, clients repository.ClientRepository) ConsultationService {
	return &consultationService{repo: repo, clients: clients}
}

func parseTimestamp(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, apierror.Validation(field+" must be an RFC 3339 timestamp", map[string]string{field: "datetime"})
	}
	return &t, nil
}

func (s *consultationService) Create(ctx context.Context, who identity.Identity, req dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	at, err := parseTimestamp("consultation_date", req.ConsultationDate)
	if err != nil {
		return nil, err
	}
	if at == nil {
		now := time.Now().UTC()
		at = &now
	}
	if err := requireClient(s.repo.DB().WithContext(ctx), s.clients, clientID); err != nil {
		return nil, apierror.From(err)
	}

	c := &model.Consultation{
		ClientID:         clientID,
		SalespersonID:    who.UserID,
		ConsultationDate: *at,
		Content:          req.Content,
		Notes:            req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, c.ID)
}

func (s *consultationService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ConsultationResponse, error) {
	c, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	return toConsultationResponse(c), nil
}

func (s *consultationService) find(ctx context.Context, who identity.Identity, id uuid.UUID) (*model.Consultation, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "consultation")
	}
	if err := policy.Authorize(policy.Resolve(who, policy.ResourceConsultation), c.SalespersonID, "consultation"); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *consultationService) List(ctx context.Context, who identity.Identity, filter dto.ConsultationFilter) (*dto.ListResponse[dto.ConsultationResponse], error) {
	filter.Normalize()
	if filter.ClientID != "" {
		id, err := parseID("client_id", filter.ClientID)
		if err != nil {
			return nil, err
		}
		filter.ClientID = id.String()
	}
	rows, total, err := s.repo.List(ctx, policy.Resolve(who, policy.ResourceConsultation), filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.ConsultationResponse, len(rows))
	for i := range rows {
		data[i] = *toConsultationResponse(&rows[i])
	}
	return &dto.ListResponse[dto.ConsultationResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *consultationService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error) {
	c, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		clientID, err := parseID("client_id", *req.ClientID)
		if err != nil {
			return nil, err
		}
		if clientID != c.ClientID {
			if err := requireClient(s.repo.DB().WithContext(ctx), s.clients, clientID); err != nil {
				return nil, apierror.From(err)
			}
			c.ClientID = clientID
			c.Client = nil
		}
	}
	if req.ConsultationDate != nil {
		at, err := parseTimestamp("consultation_date", req.ConsultationDate)
		if err != nil {
			return nil, err
		}
		if at != nil {
			c.ConsultationDate = *at
		}
	}
	if req.Content != nil {
		c.Content = *req.Content
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, id)
}

// Delete removes the consultation. Quotations that originated from it keep
// existing with their consultation reference cleared.
func (s *consultationService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	scope := policy.Resolve(who, policy.ResourceConsultation)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "consultation")
		}
		if err := policy.Authorize(scope, c.SalespersonID, "consultation"); err != nil {
			return err
		}
		if err := s.repo.DetachQuotationsTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return apierror.From(err)
	}
	return nil
}

func (s *consultationService) load(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.From(err)
	}
	return toConsultationResponse(c), nil
}

func toConsultationResponse(c *model.Consultation) *dto.ConsultationResponse {
	r := &dto.ConsultationResponse{
		ID:               c.ID.String(),
		ClientID:         c.ClientID.String(),
		SalespersonID:    c.SalespersonID.String(),
		ConsultationDate: formatTime(c.ConsultationDate),
		Content:          c.Content,
		Notes:            c.Notes,
		CreatedAt:        formatTime(c.CreatedAt),
		UpdatedAt:        formatTime(c.UpdatedAt),
	}
	if c.Client != nil {
		r.ClientName = c.Client.Name
	}
	return r
}
