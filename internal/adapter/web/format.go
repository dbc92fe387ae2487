package web

import (
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iho/kakeibo/internal/domain"
)

var typeLabels = map[domain.TransactionType]string{
	domain.TransactionTypeIncome:   "収入",
	domain.TransactionTypeExpense:  "支出",
	domain.TransactionTypeTransfer: "移動",
	domain.TransactionTypeAdjust:   "調整",
}

// amountFormatter renders integer yen amounts with thousands separators.
type amountFormatter struct {
	printer *message.Printer
}

func newAmountFormatter(tag language.Tag) amountFormatter {
	return amountFormatter{printer: message.NewPrinter(tag)}
}

func (f amountFormatter) format(n int64) string {
	return f.printer.Sprintf("%d", n)
}

func (f amountFormatter) formatPtr(n *int64) string {
	if n == nil {
		return ""
	}
	return f.format(*n)
}

func templateFuncs(f amountFormatter) template.FuncMap {
	return template.FuncMap{
		"yen":  f.format,
		"yenp": f.formatPtr,
		"typeLabel": func(t domain.TransactionType) string {
			if label, ok := typeLabels[t]; ok {
				return label
			}
			return string(t)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefInt": func(n *int) int {
			if n == nil {
				return 0
			}
			return *n
		},
		"date": func(t time.Time) string {
			return t.Format(domain.DateLayout)
		},
		"eqp": func(p *string, v string) bool {
			return p != nil && *p == v
		},
	}
}
