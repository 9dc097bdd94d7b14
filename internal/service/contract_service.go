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

// ContractService defines the business logic contract for contracts.
type ContractService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ContractResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.DocumentFilter) (*dto.ListResponse[dto.ContractResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
	RenderPDF(ctx context.Context, who identity.Identity, id uuid.UUID) ([]byte, string, error)
}

type contractService struct {
	repo       repository.ContractRepository
	items      repository.ItemRepository
	clients    repository.ClientRepository
	quotations repository.QuotationRepository
	pdf        *infra.PDFRenderer
}

func NewContractService(
	repo repository.ContractRepository,
	items repository.ItemRepository,
	clients repository.ClientRepository,
	quotations repository.QuotationRepository,
	pdf *infra.PDFRenderer,
) ContractService {
	return &contractService{repo: repo, items: items, clients: clients, quotations: quotations, pdf: pdf}
}

func (s *contractService) Create(ctx context.Context, who identity.Identity, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	quotationID, err := parseOptionalID("quotation_id", req.QuotationID)
	if err != nil {
		return nil, err
	}
	contractDate, err := parseDate("contract_date", req.ContractDate)
	if err != nil {
		return nil, err
	}
	status, err := lifecycle.StatusOrDefault(lifecycle.DocContract, req.Status)
	if err != nil {
		return nil, err
	}

	c := &model.Contract{
		ContractNumber: req.ContractNumber,
		ClientID:       clientID,
		SalespersonID:  who.UserID,
		QuotationID:    quotationID,
		Status:         status,
		ContractDate:   contractDate,
		Notes:          req.Notes,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.checkNumber(tx, c.ContractNumber, uuid.Nil); err != nil {
			return err
		}
		if err := requireClient(tx, s.clients, clientID); err != nil {
			return err
		}
		if quotationID != nil {
			if err := s.requireQuotation(tx, who, *quotationID); err != nil {
				return err
			}
		}
		priced, err := priceLines(tx, s.items, req.Items)
		if err != nil {
			return err
		}
		c.TotalAmount = priced.Total
		c.Items = contractLines(priced)
		return s.repo.CreateTx(tx, c)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, c.ID)
}

func (s *contractService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

func (s *contractService) find(ctx context.Context, who identity.Identity, id uuid.UUID) (*model.Contract, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "contract")
	}
	if err := policy.Authorize(policy.Resolve(who, policy.ResourceContract), c.SalespersonID, "contract"); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contractService) List(ctx context.Context, who identity.Identity, filter dto.DocumentFilter) (*dto.ListResponse[dto.ContractResponse], error) {
	filter.Normalize()
	scope := policy.Resolve(who, policy.ResourceContract)
	rows, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.ContractResponse, len(rows))
	for i := range rows {
		data[i] = *toContractResponse(&rows[i])
	}
	return &dto.ListResponse[dto.ContractResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *contractService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	scope := policy.Resolve(who, policy.ResourceContract)

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "contract")
		}
		if err := policy.Authorize(scope, c.SalespersonID, "contract"); err != nil {
			return err
		}

		if req.ContractNumber != nil && *req.ContractNumber != c.ContractNumber {
			if err := s.checkNumber(tx, *req.ContractNumber, c.ID); err != nil {
				return err
			}
			c.ContractNumber = *req.ContractNumber
		}
		if req.ClientID != nil {
			clientID, err := parseID("client_id", *req.ClientID)
			if err != nil {
				return err
			}
			if clientID != c.ClientID {
				if err := requireClient(tx, s.clients, clientID); err != nil {
					return err
				}
				c.ClientID = clientID
			}
		}
		update, err := parseOptionalID("quotation_id", req.QuotationID)
		if err != nil {
			return err
		}
		if c.QuotationID, err = lifecycle.KeepLineage("quotation_id", c.QuotationID, update); err != nil {
			return err
		}
		if req.Status != nil {
			if err := lifecycle.ValidateStatus(lifecycle.DocContract, *req.Status); err != nil {
				return err
			}
			c.Status = *req.Status
		}
		if req.ContractDate != nil {
			if c.ContractDate, err = parseDate("contract_date", req.ContractDate); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			c.Notes = req.Notes
		}

		if req.Items != nil {
			priced, err := priceLines(tx, s.items, *req.Items)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceItemsTx(tx, c.ID, contractLines(priced)); err != nil {
				return fmt.Errorf("replace contract items: %w", err)
			}
			c.TotalAmount = priced.Total
		}
		return s.repo.UpdateTx(tx, c)
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, id)
}

// Delete removes the contract and its lines. Contracts with installations
// are kept: the installation history must stay attached to its contract.
func (s *contractService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	scope := policy.Resolve(who, policy.ResourceContract)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundAs(apierror.From(err), "contract")
		}
		if err := policy.Authorize(scope, c.SalespersonID, "contract"); err != nil {
			return err
		}
		n, err := s.repo.InstallationsTx(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict(fmt.Sprintf("contract has %d installation(s)", n))
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return apierror.From(err)
	}
	return nil
}

func (s *contractService) RenderPDF(ctx context.Context, who identity.Identity, id uuid.UUID) ([]byte, string, error) {
	c, err := s.find(ctx, who, id)
	if err != nil {
		return nil, "", err
	}
	doc := infra.PDFDocument{
		Title:  "Contract",
		Number: c.ContractNumber,
		Facts:  [][2]string{{"Status", c.Status}},
		Lines:  pdfLines(contractStoredLines(c.Items)),
		Total:  c.TotalAmount,
	}
	if c.Client != nil {
		doc.ClientName = c.Client.Name
	}
	if c.ContractDate != nil {
		doc.Facts = append([][2]string{{"Contract date", c.ContractDate.Format(dto.DateLayout)}}, doc.Facts...)
	}
	if c.Notes != nil {
		doc.Notes = *c.Notes
	}
	b, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", apierror.Internal("render contract pdf", err)
	}
	return b, fmt.Sprintf("contract_%s.pdf", c.ContractNumber), nil
}

func (s *contractService) checkNumber(tx *gorm.DB, number string, exclude uuid.UUID) error {
	taken, err := s.repo.NumberTakenTx(tx, number, exclude)
	if err != nil {
		return err
	}
	if taken {
		return apierror.Conflict(fmt.Sprintf("contract number %s already exists", number))
	}
	return nil
}

func (s *contractService) load(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.From(err)
	}
	return toContractResponse(c), nil
}

func toContractResponse(c *model.Contract) *dto.ContractResponse {
	r := &dto.ContractResponse{
		ID:             c.ID.String(),
		ContractNumber: c.ContractNumber,
		ClientID:       c.ClientID.String(),
		SalespersonID:  c.SalespersonID.String(),
		QuotationID:    idString(c.QuotationID),
		Status:         c.Status,
		ContractDate:   formatDate(c.ContractDate),
		TotalAmount:    c.TotalAmount,
		Notes:          c.Notes,
		Items:          lineResponses(contractStoredLines(c.Items)),
		CreatedAt:      formatTime(c.CreatedAt),
		UpdatedAt:      formatTime(c.UpdatedAt),
	}
	if c.Client != nil {
		r.ClientName = c.Client.Name
	}
	return r
}

// requireQuotation checks that the caller may link a contract to quotation id.
// A quotation the caller cannot see is reported as missing.
func (s *contractService) requireQuotation(tx *gorm.DB, who identity.Identity, id uuid.UUID) error {
	missing := apierror.Validation("quotation does not exist", map[string]string{"quotation_id": "exists"})
	q, err := s.quotations.FindByIDTx(tx, id)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return missing
		}
		return err
	}
	err = policy.Authorize(policy.Resolve(who, policy.ResourceQuotation), q.SalespersonID, "quotation")
	if apierror.Is(err, apierror.KindNotFound) {
		return missing
	}
	return err
}
