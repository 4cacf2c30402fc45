package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"orebi_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GeneratePaymentQR génère un QR SEPA (EPC) en base64 prêt à mettre dans <img src="...">
func GeneratePaymentQR(iban, bic, name, ref string, amount float64) (string, error) {
	// format EPC basique
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF imprime la facture HTML en PDF via Chrome headless.
func RenderInvoicePDF(invoiceHTML string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer le webhook Stripe
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(invoiceHTML))

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GenerateInvoiceHTML construit la facture imprimée en PDF et jointe à
// l'email de confirmation. qrBase64 est le QR de paiement SEPA (optionnel).
func GenerateInvoiceHTML(order models.Order, userEmail, qrBase64 string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f</td>
				<td>%.2f</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	qrHTML := ""
	if qrBase64 != "" {
		qrHTML = fmt.Sprintf(`<div style="margin-top:30px"><p>Payer par virement :</p><img src="%s" width="128" height="128"/></div>`, qrBase64)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Facture %s</title></head>
<body style="font-family: Arial, sans-serif; padding: 40px;">
	<h1>Facture Orebi</h1>
	<p>Commande : %s<br/>Client : %s<br/>Date : %s</p>
	<table style="width:100%%; border-collapse: collapse;" border="1" cellpadding="8">
		<thead><tr><th>Produit</th><th>Quantité</th><th>Prix unitaire</th><th>Total</th></tr></thead>
		<tbody>%s</tbody>
	</table>
	<p style="text-align:right">Sous-total : %.2f<br/>Livraison : %.2f<br/><strong>Total : %.2f</strong></p>
	%s
</body>
</html>`, order.ID, order.ID, userEmail, order.CreatedAt.Format("02/01/2006"),
		itemsHTML, order.Subtotal, order.Shipping, order.AmountTotal, qrHTML)
}
