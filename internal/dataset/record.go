package dataset

import (
	"strconv"
)

// Status is the account standing reported by the ERP. Values outside the
// known set are carried through verbatim.
type Status string

const (
	StatusActive  Status = "Active"
	StatusOverdue Status = "Overdue"
)

// Record is one customer row: ERP account data joined with CRM agreement
// and logistics metadata on the customer id.
type Record struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
	Status        Status  `json:"status"`
	LastPayment   string  `json:"last_payment"`
	AgreementNote string  `json:"agreement_note"`
	LogisticsNote string  `json:"logistics_note"`
	ContactPerson string  `json:"contact_person"`
}

// FormatBalance renders a monetary amount the way it appears in the
// serialized snapshot.
func FormatBalance(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Seed returns the fixed customer table the hub ships with.
func Seed() []Record {
	return []Record{
		{
			ID:            101,
			Name:          "Ταβέρνα 'Ο Νίκος'",
			Balance:       450.50,
			Currency:      "EUR",
			Status:        StatusOverdue,
			LastPayment:   "2023-10-01",
			AgreementNote: "⚠️ ΠΡΟΣΟΧΗ: Μόνο μετρητοίς (Blacklist Candidate)",
			LogisticsNote: "🚛 Είσοδος από πίσω πόρτα κουζίνας",
			ContactPerson: "Κος Νίκος",
		},
		{
			ID:            102,
			Name:          "Blue Coast Hotel & Resort",
			Balance:       12500.00,
			Currency:      "EUR",
			Status:        StatusActive,
			LastPayment:   "2023-11-15",
			AgreementNote: "💎 VIP Συμφωνία: 5% Έκπτωση λόγω γνωριμίας CEO",
			LogisticsNote: "⏰ Παράδοση 08:00-10:00 αυστηρά",
			ContactPerson: "κα Μαρία (Λογιστήριο)",
		},
		{
			ID:            103,
			Name:          "Πλαστικά Κρήτης ΑΒΕΕ",
			Balance:       5000.00,
			Currency:      "EUR",
			Status:        StatusActive,
			LastPayment:   "2023-11-20",
			AgreementNote: "🏭 Συμβόλαιο Βιομηχανικού - Τιμή Ζώνης Β",
			LogisticsNote: "🚜 Χρειάζεται κλαρκ - Προτεραιότητα 4ωρου",
			ContactPerson: "Κος Γιώργος (Αποθήκη)",
		},
		{
			ID:            104,
			Name:          "Super Market ΑΦΟΙ",
			Balance:       0.00,
			Currency:      "EUR",
			Status:        StatusActive,
			LastPayment:   "2023-11-22",
			AgreementNote: "🆕 Νέος πελάτης - Υπό δοκιμή",
			LogisticsNote: "✅ Εύκολη πρόσβαση - Ράμπα",
			ContactPerson: "Κος Γιάννης",
		},
		{
			ID:            105,
			Name:          "Cafe Αμάν",
			Balance:       120.00,
			Currency:      "EUR",
			Status:        StatusOverdue,
			LastPayment:   "2023-09-10",
			AgreementNote: "📄 Παλιά συμφωνία - Χωρίς έκπτωση",
			LogisticsNote: "⚠️ Στενό δρομάκι - Μόνο μικρό φορτηγό (Van)",
			ContactPerson: "Κος Στράτος",
		},
	}
}
