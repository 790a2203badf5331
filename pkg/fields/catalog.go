package fields

// Field names a semantic value pulled out of a row.
type Field string

// Known fields.
const (
	Primary     Field = "primary"
	Tier        Field = "tier"
	Size        Field = "size"
	Price       Field = "price"
	PhotosReady Field = "photos_ready"
	TitleReady  Field = "title_ready"
	CopyReady   Field = "copy_ready"
	ListingURL  Field = "listing_url"
	CTA         Field = "cta"
	Status      Field = "status"
	Notes       Field = "notes"
	StartDate   Field = "start_date"
)

// Spec describes how a field is found and how it is labeled in task notes.
// An empty Label keeps the field out of the notes body.
type Spec struct {
	Field    Field
	Keywords []string
	Label    string
}

// Catalog lists every field in notes order.
var Catalog = []Spec{
	{Field: Primary, Keywords: []string{"species"}},
	{Field: Tier, Keywords: []string{"tier"}},
	{Field: Size, Keywords: []string{"size", "inch"}, Label: "Size (inch)"},
	{Field: Price, Keywords: []string{"price", "thb"}, Label: "Est price range (THB)"},
	{Field: PhotosReady, Keywords: []string{"photos ready"}, Label: "Photos ready"},
	{Field: TitleReady, Keywords: []string{"title ready"}, Label: "Title ready"},
	{Field: CopyReady, Keywords: []string{"copy ready"}, Label: "Copy ready"},
	{Field: ListingURL, Keywords: []string{"url", "listing"}, Label: "Listing URL"},
	{Field: CTA, Keywords: []string{"cta"}, Label: "CTA"},
	{Field: Status, Keywords: []string{"status"}, Label: "Status"},
	{Field: Notes, Keywords: []string{"notes"}, Label: "Notes"},
	{Field: StartDate, Keywords: []string{"start date", "scheduled_date", "date"}},
}

// Lookup returns the catalog entry for f.
func Lookup(f Field) (Spec, bool) {
	for _, s := range Catalog {
		if s.Field == f {
			return s, true
		}
	}
	return Spec{}, false
}

// Keywords returns the match keywords for f.
func Keywords(f Field) []string {
	s, _ := Lookup(f)
	return s.Keywords
}
