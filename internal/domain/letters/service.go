package letters

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/platform/email"
	"hrdocs/internal/platform/money"
)

const dateLayout = "2006-01-02"

// Recipient is the employee data a letter is built from.
type Recipient struct {
	ID             string
	Code           string
	Name           string
	Email          string
	Designation    string
	Department     string
	EmploymentType string
	JoiningDate    time.Time
	Compensation   compensation.Breakdown
}

type Directory interface {
	Recipient(ctx context.Context, employeeID string) (Recipient, error)
	MarkOfferSent(ctx context.Context, employeeID string) error
}

type Store interface {
	HistoryWriter
	ListLetters(ctx context.Context, employeeID string) ([]Letter, error)
	GetLetter(ctx context.Context, id string) (Letter, error)
}

type DocumentRenderer interface {
	Render(title, body string) ([]byte, error)
}

type Company struct {
	Name    string
	Address string
	Contact string
}

type Request struct {
	EmployeeID  string `json:"employeeId"`
	LetterType  string `json:"letterType"`
	CompanyName string `json:"companyName,omitempty"`
}

type SendRequest struct {
	EmployeeID    string `json:"employeeId"`
	LetterID      string `json:"letterId,omitempty"`
	LetterType    string `json:"letterType,omitempty"`
	LetterContent string `json:"letterContent,omitempty"`
	PDFBase64     string `json:"pdfBase64,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Message       string `json:"customMessage,omitempty"`
	CompanyName   string `json:"companyName,omitempty"`
}

type SendResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Service struct {
	pipeline  *Pipeline
	directory Directory
	store     Store
	renderer  DocumentRenderer
	mailer    email.Mailer
	company   Company
	currency  string
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(pipeline *Pipeline, directory Directory, store Store, renderer DocumentRenderer, mailer email.Mailer, company Company, currency string, log zerolog.Logger) *Service {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return &Service{
		pipeline:  pipeline,
		directory: directory,
		store:     store,
		renderer:  renderer,
		mailer:    mailer,
		company:   company,
		currency:  currency,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Generate(ctx context.Context, req Request) (Letter, error) {
	if strings.TrimSpace(req.LetterType) == "" {
		return Letter{}, ErrLetterTypeRequired
	}
	recipient, err := s.directory.Recipient(ctx, req.EmployeeID)
	if err != nil {
		return Letter{}, err
	}
	return s.pipeline.Generate(ctx, s.Context(recipient, req.CompanyName), req.LetterType)
}

// Context builds the document context for a recipient. Every amount is
// formatted here so templates never format numbers.
func (s *Service) Context(r Recipient, companyName string) DocumentContext {
	company := s.company
	if strings.TrimSpace(companyName) != "" {
		company.Name = strings.TrimSpace(companyName)
	}
	c := r.Compensation
	format := func(v float64) string { return money.Format(s.currency, v) }

	return DocumentContext{
		EmployeeID:     r.ID,
		EmployeeCode:   r.Code,
		Name:           r.Name,
		Role:           r.Designation,
		Department:     r.Department,
		JoiningDate:    formatDate(r.JoiningDate),
		EmploymentType: r.EmploymentType,
		Today:          s.now().Format(dateLayout),
		CompanyName:    company.Name,
		CompanyAddress: company.Address,
		CompanyContact: company.Contact,
		AnnualCost:     c.AnnualCost,
		CTC:            format(c.AnnualCost),
		Basic:          format(c.Basic),
		HRA:            format(c.HRA),
		Allowance:      format(c.SpecialAllowance),
		ProvidentFund:  format(c.ProvidentFund),
		Deductions:     format(c.Deductions),
	}
}

func (s *Service) History(ctx context.Context, employeeID string) ([]Letter, error) {
	if _, err := s.directory.Recipient(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.ListLetters(ctx, employeeID)
}

func (s *Service) Letter(ctx context.Context, id string) (Letter, error) {
	return s.store.GetLetter(ctx, id)
}

// PDF renders a stored letter.
func (s *Service) PDF(ctx context.Context, id string) ([]byte, Letter, error) {
	letter, err := s.store.GetLetter(ctx, id)
	if err != nil {
		return nil, Letter{}, err
	}
	data, err := s.renderer.Render(ParseType(letter.LetterType).Label()+" Letter", letter.Content)
	if err != nil {
		return nil, Letter{}, fmt.Errorf("render pdf: %w", err)
	}
	return data, letter, nil
}

// AttachmentName is the file name a letter PDF is mailed or downloaded as.
func AttachmentName(t Type, name string) string {
	return fmt.Sprintf("%s_Letter_%s.pdf", t.Label(), strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// Send mails a letter to the employee. A supplied base64 PDF is attached as
// is; otherwise the letter text is rendered to PDF. A delivered offer moves
// the employee to "Offer Sent".
func (s *Service) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	recipient, err := s.directory.Recipient(ctx, req.EmployeeID)
	if err != nil {
		return SendResult{}, err
	}
	if strings.TrimSpace(recipient.Email) == "" {
		return SendResult{}, ErrMissingRecipient
	}

	content, letterType := req.LetterContent, req.LetterType
	if req.LetterID != "" {
		stored, err := s.store.GetLetter(ctx, req.LetterID)
		if err != nil {
			return SendResult{}, err
		}
		// A letter is only ever mailed to the employee it was written for.
		if stored.EmployeeID != recipient.ID {
			return SendResult{}, fmt.Errorf("%w: %s for employee %s", ErrLetterNotFound, req.LetterID, recipient.ID)
		}
		if content == "" {
			content = stored.Content
		}
		if letterType == "" {
			letterType = stored.LetterType
		}
	}
	if letterType == "" {
		letterType = Offer.String()
	}
	kind := ParseType(letterType)

	company := s.company.Name
	if strings.TrimSpace(req.CompanyName) != "" {
		company = strings.TrimSpace(req.CompanyName)
	}

	msg := email.Message{
		To:      recipient.Email,
		Subject: req.Subject,
		Body:    req.Message,
	}
	if strings.TrimSpace(msg.Subject) == "" {
		msg.Subject = defaultSubject(kind, recipient.Name)
	}
	if strings.TrimSpace(msg.Body) == "" {
		msg.Body = defaultBody(kind, recipient.Name, company)
	}

	attachment, err := s.attachment(kind, recipient.Name, req.PDFBase64, content)
	if err != nil {
		return SendResult{}, err
	}
	if attachment != nil {
		msg.Attachments = append(msg.Attachments, *attachment)
	} else if content != "" {
		msg.Body += "\n\n--- LETTER TEXT ---\n" + content
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return SendResult{}, fmt.Errorf("send email: %w", err)
	}

	if kind == Offer {
		if err := s.directory.MarkOfferSent(ctx, recipient.ID); err != nil {
			s.log.Error().Err(err).Str("employeeId", recipient.ID).Msg("offer sent but status update failed")
		}
	}
	return SendResult{Status: "success", Message: "Email sent successfully"}, nil
}

func (s *Service) attachment(kind Type, name, encoded, content string) (*email.Attachment, error) {
	filename := AttachmentName(kind, name)
	if strings.TrimSpace(encoded) != "" {
		data, err := DecodePDF(encoded)
		if err != nil {
			return nil, err
		}
		return &email.Attachment{Filename: filename, ContentType: "application/pdf", Data: data}, nil
	}
	if content == "" || s.renderer == nil {
		return nil, nil
	}
	data, err := s.renderer.Render(kind.Label()+" Letter", content)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &email.Attachment{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

// DecodePDF accepts raw base64 or a data URI.
func DecodePDF(encoded string) ([]byte, error) {
	if _, after, found := strings.Cut(encoded, "base64,"); found {
		encoded = after
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, ErrInvalidAttachment
	}
	return data, nil
}

func defaultSubject(kind Type, name string) string {
	switch kind {
	case Offer:
		return "Offer of Employment - " + name
	default:
		return kind.Label() + " Letter - " + name
	}
}

func defaultBody(kind Type, name, company string) string {
	if kind == Offer {
		return fmt.Sprintf("Dear %s,\n\nCongratulations! We are pleased to offer you a position at %s.\n\nPlease find the offer letter attached.\n\nRegards,\nHR Team", name, company)
	}
	return fmt.Sprintf("Dear %s,\n\nPlease find your %s letter from %s attached.\n\nRegards,\nHR Team", name, strings.ToLower(kind.Label()), company)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
