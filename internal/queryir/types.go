package queryir

// Query is one of the recognised statement shapes.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Table names a table of the hero schema.
type Table string

const (
	TableHeroes   Table = "WORKING_CLASS_HEROES"
	TableVouchers Table = "VOUCHERS"
	TableFile     Table = "FILE"
)

// Match is the comparison a Delete applies to natid.
type Match int

const (
	// MatchEquals deletes the rows of exactly one natid.
	MatchEquals Match = iota
	// MatchLike deletes every natid matching a LIKE pattern.
	MatchLike
)

func (m Match) String() string {
	switch m {
	case MatchEquals:
		return "="
	case MatchLike:
		return "LIKE"
	default:
		return "?"
	}
}

// CountHero is the existence check: the number of heroes with NatID.
//
//	SELECT COUNT(*) as count FROM WORKING_CLASS_HEROES WHERE natid = ?
type CountHero struct {
	NatID string
}

func (CountHero) queryNode() {}

// SelectHero fetches the hero record with NatID.
//
//	SELECT * FROM WORKING_CLASS_HEROES WHERE natid = ?
type SelectHero struct {
	NatID string
}

func (SelectHero) queryNode() {}

// SelectVouchers fetches every voucher of the hero with NatID.
//
//	SELECT * FROM VOUCHERS WHERE natid = ?
type SelectVouchers struct {
	NatID string
}

func (SelectVouchers) queryNode() {}

// LatestFile fetches the newest FILE record of a file type.
//
//	SELECT * FROM FILE WHERE FILE_TYPE = ? ORDER BY ID DESC LIMIT 1
type LatestFile struct {
	FileType string
}

func (LatestFile) queryNode() {}

// Delete removes rows of a hero table by natid.
//
//	DELETE FROM <Table> WHERE natid = ?
//	DELETE FROM <Table> WHERE natid LIKE ?
//
// Only TableHeroes and TableVouchers may be deleted from.
type Delete struct {
	Table Table
	Match Match
	Value string
}

func (Delete) queryNode() {}

// Kind returns a short stable name for the shape of q, for logs and traces.
func Kind(q Query) string {
	switch q.(type) {
	case CountHero, *CountHero:
		return "count_hero"
	case SelectHero, *SelectHero:
		return "select_hero"
	case SelectVouchers, *SelectVouchers:
		return "select_vouchers"
	case LatestFile, *LatestFile:
		return "latest_file"
	case Delete, *Delete:
		return "delete"
	default:
		return "unknown"
	}
}
