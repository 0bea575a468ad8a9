package evidence

import "github.com/hildam/funeral-claim-go/entity/consts"

// FieldMapping 抽取字段到表单字段的映射
type FieldMapping struct {
	From string // 抽取字段
	To   string // 表单字段
}

var mappingTable = map[consts.DocumentType][]FieldMapping{
	consts.DeathCertificate: {
		{From: "deceasedFirstName", To: "deceasedFirstName"},
		{From: "deceasedLastName", To: "deceasedLastName"},
		{From: "dateOfDeath", To: "dateOfDeath"},
		{From: "dateOfBirth", To: "deceasedDateOfBirth"},
		{From: "placeOfDeath", To: "placeOfDeath"},
		{From: "registrationNumber", To: "deathRegistrationNumber"},
	},
	consts.FuneralInvoice: {
		{From: "totalAmount", To: "funeralCost"},
		{From: "serviceProvider", To: "funeralDirector"},
		{From: "invoiceDate", To: "funeralInvoiceDate"},
		{From: "funeralDate", To: "funeralDate"},
	},
	consts.BenefitLetter: {
		{From: "benefitType", To: "benefitType"},
		{From: "paymentAmount", To: "benefitAmount"},
		{From: "letterDate", To: "benefitLetterDate"},
	},
	consts.RelationshipProof: {
		{From: "relationshipType", To: "relationshipToDeceased"},
	},
}

// MappingFor 证据类型的映射表，generic 与未知类型没有映射
func MappingFor(docType consts.DocumentType) []FieldMapping {
	return mappingTable[docType]
}

// MapFields 把抽取字段改名为表单字段，不在映射表中的字段丢弃
func MapFields[V any](extracted map[string]V, docType consts.DocumentType) map[string]V {
	out := make(map[string]V)
	for _, m := range MappingFor(docType) {
		if v, ok := extracted[m.From]; ok {
			out[m.To] = v
		}
	}
	return out
}
