package service

import (
	"context"
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/infra"
	"github.com/HanjuJo/nexo-v1/internal/lifecycle"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuotationService defines the business logic contract for quotations.
type QuotationService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.QuotationResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.DocumentFilter) (*dto.ListResponse[dto.QuotationResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
	RenderPDF(ctx context.Context, who identity.Identity, id uuid.UUID) ([]byte, string, error)
}

type quotationService struct {
	repo          repository.QuotationRepository
	items         repository.ItemRepository
	clients       repository.ClientRepository
	consultations repository.ConsultationRepository
	pdf           *infra.PDFRenderer
}

func NewQuotationService(
	repo repository.QuotationRepository,
	items repository.ItemRepository,
	clients repository.ClientRepository,
	consultations repository.ConsultationRepository,
	pdf *infra.PDFRenderer,
) QuotationService {
	return &quotationService{repo: repo, items: items, clients: clients, consultations: consultations, pdf: pdf}
}

func (s *quotationService) Create(ctx context.Context, who identity.Identity, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	consultationID, err := parseOptionalID("consultation_id", req.ConsultationID)
	if err != nil {
		return nil, err
	}
	validUntil, err := parseDate("valid_until", req.ValidUntil)
	if err != nil {
		return nil, err
	}
	status, err := lifecycle.StatusOrDefault(lifecycle.DocQuotation, req.Status)
	if err != nil {
		return nil, err
	}

	q := &model.Quotation{
		QuotationNumber: req.QuotationNumber,
		ClientID:        clientID,
		SalespersonID:   who.UserID,
		ConsultationID:  consultationID,
		Status:          status,
		ValidUntil:      validUntil,
		Notes:           req.Notes,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.checkNumber(tx, q.QuotationNumber, uuid.Nil); err != nil {
			return err
		}
		if err := requireClient(tx, s.clients, clientID); err != nil {
			return err
		}
		if consultationID != nil {
			if err := s.requireConsultation(tx, who, *consultationID); err != nil {
				return err
			}
		}
		priced, err := priceLines(tx, s.items, req.Items)
		if err != nil {
			return err
		}
		q.TotalAmount = priced.Total
		q.Items = quotationLines(priced)
		return s.repo.CreateTx(tx, q)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, q.ID)
}

func (s *quotationService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.QuotationResponse, error) {
	q, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

func (s *quotationService) find(ctx context.Context, who identity.Identity, id uuid.UUID) (*model.Quotation, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "quotation")
	}
	if err := policy.Authorize(policy.Resolve(who, policy.ResourceQuotation), q.SalespersonID, "quotation"); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quotationService) List(ctx context.Context, who identity.Identity, filter dto.DocumentFilter) (*dto.ListResponse[dto.QuotationResponse], error) {
	filter.Normalize()
	scope := policy.Resolve(who, policy.ResourceQuotation)
	rows, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.QuotationResponse, len(rows))
	for i := range rows {
		data[i] = *toQuotationResponse(&rows[i])
	}
	return &dto.ListResponse[dto.QuotationResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *quotationService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error) {
	scope := policy.Resolve(who, policy.ResourceQuotation)

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		q, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "quotation")
		}
		if err := policy.Authorize(scope, q.SalespersonID, "quotation"); err != nil {
			return err
		}

		if req.QuotationNumber != nil && *req.QuotationNumber != q.QuotationNumber {
			if err := s.checkNumber(tx, *req.QuotationNumber, q.ID); err != nil {
				return err
			}
			q.QuotationNumber = *req.QuotationNumber
		}
		if req.ClientID != nil {
			clientID, err := parseID("client_id", *req.ClientID)
			if err != nil {
				return err
			}
			if clientID != q.ClientID {
				if err := requireClient(tx, s.clients, clientID); err != nil {
					return err
				}
				q.ClientID = clientID
			}
		}
		update, err := parseOptionalID("consultation_id", req.ConsultationID)
		if err != nil {
			return err
		}
		if q.ConsultationID, err = lifecycle.KeepLineage("consultation_id", q.ConsultationID, update); err != nil {
			return err
		}
		if req.Status != nil {
			if err := lifecycle.ValidateStatus(lifecycle.DocQuotation, *req.Status); err != nil {
				return err
			}
			q.Status = *req.Status
		}
		if req.ValidUntil != nil {
			if q.ValidUntil, err = parseDate("valid_until", req.ValidUntil); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			q.Notes = req.Notes
		}

		if req.Items != nil {
			priced, err := priceLines(tx, s.items, *req.Items)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceItemsTx(tx, q.ID, quotationLines(priced)); err != nil {
				return fmt.Errorf("replace quotation items: %w", err)
			}
			q.TotalAmount = priced.Total
		}
		return s.repo.UpdateTx(tx, q)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, id)
}

func (s *quotationService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	scope := policy.Resolve(who, policy.ResourceQuotation)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		q, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "quotation")
		}
		if err := policy.Authorize(scope, q.SalespersonID, "quotation"); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return apierror.From(err)
	}
	return nil
}

func (s *quotationService) RenderPDF(ctx context.Context, who identity.Identity, id uuid.UUID) ([]byte, string, error) {
	q, err := s.find(ctx, who, id)
	if err != nil {
		return nil, "", err
	}
	doc := infra.PDFDocument{
		Title:  "Quotation",
		Number: q.QuotationNumber,
		Facts: [][2]string{
			{"Date", q.CreatedAt.Format(dto.DateLayout)},
			{"Status", q.Status},
		},
		Lines: pdfLines(quotationStoredLines(q.Items)),
		Total: q.TotalAmount,
	}
	if q.Client != nil {
		doc.ClientName = q.Client.Name
	}
	if q.ValidUntil != nil {
		doc.Facts = append(doc.Facts, [2]string{"Valid until", q.ValidUntil.Format(dto.DateLayout)})
	}
	if q.Notes != nil {
		doc.Notes = *q.Notes
	}
	b, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", apierror.Internal("render quotation pdf", err)
	}
	return b, fmt.Sprintf("quotation_%s.pdf", q.QuotationNumber), nil
}

func (s *quotationService) checkNumber(tx *gorm.DB, number string, exclude uuid.UUID) error {
	taken, err := s.repo.NumberTakenTx(tx, number, exclude)
	if err != nil {
		return err
	}
	if taken {
		return apierror.Conflict(fmt.Sprintf("quotation number %s already exists", number))
	}
	return nil
}

// requireConsultation checks that the caller may link a quotation to
// consultation id. A consultation the caller cannot see is reported as missing.
func (s *quotationService) requireConsultation(tx *gorm.DB, who identity.Identity, id uuid.UUID) error {
	missing := apierror.Validation("consultation does not exist", map[string]string{"consultation_id": "exists"})
	c, err := s.consultations.FindByIDTx(tx, id)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return missing
		}
		return err
	}
	err = policy.Authorize(policy.Resolve(who, policy.ResourceConsultation), c.SalespersonID, "consultation")
	if apierror.Is(err, apierror.KindNotFound) {
		return missing
	}
	return err
}

func (s *quotationService) load(ctx context.Context, id uuid.UUID) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.From(err)
	}
	return toQuotationResponse(q), nil
}

func requireClient(tx *gorm.DB, clients repository.ClientRepository, id uuid.UUID) error {
	ok, err := clients.ExistsTx(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.Validation("client does not exist", map[string]string{"client_id": "exists"})
	}
	return nil
}

func toQuotationResponse(q *model.Quotation) *dto.QuotationResponse {
	r := &dto.QuotationResponse{
		ID:              q.ID.String(),
		QuotationNumber: q.QuotationNumber,
		ClientID:        q.ClientID.String(),
		SalespersonID:   q.SalespersonID.String(),
		ConsultationID:  idString(q.ConsultationID),
		Status:          q.Status,
		ValidUntil:      formatDate(q.ValidUntil),
		TotalAmount:     q.TotalAmount,
		Notes:           q.Notes,
		Items:           lineResponses(quotationStoredLines(q.Items)),
		CreatedAt:       formatTime(q.CreatedAt),
		UpdatedAt:       formatTime(q.UpdatedAt),
	}
	if q.Client != nil {
		r.ClientName = q.Client.Name
	}
	return r
}
