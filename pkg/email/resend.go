package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
	"github.com/sefazor/brandkit-backend/internal/models"
	"go.uber.org/zap"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`<h1>Thanks for your purchase, {{.FullName}}!</h1>
<p>Order {{.BatchID}}: <strong>{{.Package}}</strong> until {{.Expires}}.</p>
{{if .Addons}}<ul>{{range .Addons}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p>Total paid: {{.Total}}</p>`))

type receiptData struct {
	FullName string
	BatchID  string
	Package  string
	Expires  string
	Addons   []string
	Total    string
}

type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	log      *zap.Logger
}

func NewEmailService(apiKey, from, fromName string, log *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
		log:      log,
	}
}

func renderReceipt(user *models.User, purchase *models.PackagePurchase) (string, error) {
	data := receiptData{
		FullName: user.FullName,
		BatchID:  purchase.PurchaseBatchID,
		Expires:  purchase.ExpirationDate.Format("2006-01-02"),
		Total:    purchase.TotalAmount.StringFixed(2),
	}
	if purchase.Package != nil {
		data.Package = purchase.Package.Name
	}
	for _, a := range purchase.Addons {
		if a.Addon != nil {
			data.Addons = append(data.Addons, a.Addon.Name)
		}
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailService) SendPurchaseReceipt(ctx context.Context, user *models.User, purchase *models.PackagePurchase) error {
	html, err := renderReceipt(user, purchase)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.from),
		To:      []string{user.Email},
		Subject: "Your Brand Kit purchase",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		return err
	}

	s.log.Info("purchase receipt sent",
		zap.Uint("user_id", user.ID),
		zap.String("purchase_batch_id", purchase.PurchaseBatchID),
		zap.String("email_id", resp.Id),
	)
	return nil
}
