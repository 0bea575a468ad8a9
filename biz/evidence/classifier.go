package evidence

import (
	"strings"

	"github.com/hildam/funeral-claim-go/entity/consts"
)

// Classify 按关键词判断证据类型，文件名优先于正文，先命中的规则生效
func Classify(rawText, filename string) consts.DocumentType {
	if docType, ok := classifyHints(strings.ToLower(filename)); ok {
		return docType
	}
	if docType, ok := classifyHints(strings.ToLower(rawText)); ok {
		return docType
	}
	return consts.Generic
}

func classifyHints(s string) (consts.DocumentType, bool) {
	has := func(word string) bool { return strings.Contains(s, word) }

	switch {
	case has("death") && has("certificate"):
		return consts.DeathCertificate, true
	case has("funeral") && (has("bill") || has("invoice")):
		return consts.FuneralInvoice, true
	case has("benefit") || has("dwp"):
		return consts.BenefitLetter, true
	case has("relationship"):
		return consts.RelationshipProof, true
	}
	return "", false
}
