package geofeature

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

func AccountPopup(siteCode string, accountID int64) string {
	return fmt.Sprintf("%s account %d", siteCode, accountID)
}

// BadDebtPopup appends the written-off amount, e.g. "RD01 account 42 (bad debt $1,250.00)".
func BadDebtPopup(siteCode string, accountID int64, writeOffs float64) string {
	return AccountPopup(siteCode, accountID) + printer.Sprintf(" (bad debt $%.2f)", writeOffs)
}
