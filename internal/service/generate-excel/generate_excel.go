package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/payplan"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type OfferSource interface {
	GetCurrentOffer(ctx context.Context) storage.Offer
	GetBranding(ctx context.Context) storage.Branding
	GetLabels(ctx context.Context) storage.Labels
}

type GenerateExcelService struct {
	storage OfferSource
}

func NewGenerateService(storage OfferSource) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

// GenerateExcel renders the current offer as a one-sheet workbook: branding
// header, identification block, financial breakdown, payment plan with its
// percentage total.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context) ([]byte, error) {
	offer := g.storage.GetCurrentOffer(ctx)
	branding := g.storage.GetBranding(ctx)
	labels := g.storage.GetLabels(ctx)

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Offer"
	f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	row := 1
	company := branding.CompanyName
	if company == "" {
		company = "Sales Offer"
	}
	f.SetCellValue(sheet, cellName(1, row), company)
	f.SetCellStyle(sheet, cellName(1, row), cellName(2, row), titleStyle)
	row++
	if branding.AgentName != "" {
		f.SetCellValue(sheet, cellName(1, row), fmt.Sprintf("%s  %s  %s", branding.AgentName, branding.AgentPhone, branding.AgentEmail))
		row++
	}
	row++

	writePair := func(key string, value any) {
		f.SetCellValue(sheet, cellName(1, row), label(labels, key))
		f.SetCellValue(sheet, cellName(2, row), value)
		row++
	}

	writePair("projectName", offer.ProjectName)
	writePair("unitNumber", offer.UnitNumber)
	writePair("unitType", offer.UnitType)
	writePair("totalArea", offer.TotalArea)
	row++

	writePair("originalPrice", calc.FormatCurrency(offer.OriginalPrice))
	writePair("sellingPrice", calc.FormatCurrency(offer.SellingPrice))
	writePair("refund", calc.FormatCurrency(offer.Refund))
	writePair("balance", calc.FormatCurrency(offer.Balance))
	writePair("premium", calc.FormatCurrency(offer.Premium))
	writePair("adgmFee", calc.FormatCurrency(offer.ADGMFee))
	writePair("agencyFee", calc.FormatCurrency(offer.AgencyFee))

	f.SetCellValue(sheet, cellName(1, row), label(labels, "totalPayable"))
	f.SetCellValue(sheet, cellName(2, row), offer.TotalPayable)
	f.SetCellStyle(sheet, cellName(1, row), cellName(2, row), headerStyle)
	row += 2

	if len(offer.PaymentPlan) > 0 {
		planHeaders := []string{"Milestone", "Percentage", "Amount"}
		for i, name := range planHeaders {
			f.SetCellValue(sheet, cellName(i+1, row), name)
		}
		f.SetCellStyle(sheet, cellName(1, row), cellName(len(planHeaders), row), headerStyle)
		row++

		for _, pr := range offer.PaymentPlan {
			f.SetCellValue(sheet, cellName(1, row), pr.Date)
			f.SetCellValue(sheet, cellName(2, row), pr.Percentage+"%")
			f.SetCellValue(sheet, cellName(3, row), pr.Amount)
			row++
		}

		result := payplan.Validate(offer.PaymentPlan)
		f.SetCellValue(sheet, cellName(1, row), "Total")
		f.SetCellValue(sheet, cellName(2, row), fmt.Sprintf("%v%%", result.TotalPercent))
		f.SetCellStyle(sheet, cellName(1, row), cellName(3, row), headerStyle)
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "C", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func label(labels storage.Labels, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return key
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
