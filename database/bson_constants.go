package database

// Opérateurs d'agrégation MongoDB (évite les littéraux dupliqués)
const (
	BSONLookup  = "$lookup"
	BSONUnwind  = "$unwind"
	BSONMatch   = "$match"
	BSONGroup   = "$group"
	BSONProject = "$project"
	BSONSort    = "$sort"
	BSONSet     = "$set"
	BSONUnset   = "$unset"
	BSONSum     = "$sum"
	BSONCond    = "$cond"
	BSONEq      = "$eq"
	BSONGte     = "$gte"
	BSONLt      = "$lt"
)
