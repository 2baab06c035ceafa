package sourceir

// RecordDef is a named record/struct definition: an ordered list of typed
// fields.
type RecordDef struct {
	Name   string
	Fields []Field
}

// Field is one named, typed record field.
type Field struct {
	Name string
	Type Type
}

// Ctor is one constructor of a tagged union. Poly reports whether the
// constructor's declared argument type still mentions a type variable —
// the Variant Specializer (component F) exists to eliminate exactly this.
type Ctor struct {
	Name string
	Arg  Type
	Poly bool
}

// UnionDef is a named tagged-union (variant) definition.
type UnionDef struct {
	Name  string
	Ctors []Ctor
}

// EnumDef is a named enumeration: an ordered list of nullary constructors.
type EnumDef struct {
	Name  string
	Ctors []string
}

// Registry resolves named records/variants/enums during lowering. It
// mirrors the teacher's TypeRegistry delegation shape: one map per kind
// of named definition, populated once by whatever produced the
// already-checked source IR.
type Registry struct {
	records map[string]*RecordDef
	unions  map[string]*UnionDef
	enums   map[string]*EnumDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*RecordDef),
		unions:  make(map[string]*UnionDef),
		enums:   make(map[string]*EnumDef),
	}
}

func (r *Registry) AddRecord(def *RecordDef) { r.records[def.Name] = def }
func (r *Registry) AddUnion(def *UnionDef)   { r.unions[def.Name] = def }
func (r *Registry) AddEnum(def *EnumDef)     { r.enums[def.Name] = def }

func (r *Registry) Record(name string) (*RecordDef, bool) {
	d, ok := r.records[name]
	return d, ok
}

func (r *Registry) Union(name string) (*UnionDef, bool) {
	d, ok := r.unions[name]
	return d, ok
}

func (r *Registry) Enum(name string) (*EnumDef, bool) {
	d, ok := r.enums[name]
	return d, ok
}

// ReplaceUnion installs a new constructor list for an existing union,
// used by the Variant Specializer once polymorphic constructors have been
// replaced by their monomorphic instantiations.
func (r *Registry) ReplaceUnion(name string, ctors []Ctor) {
	if u, ok := r.unions[name]; ok {
		u.Ctors = ctors
	}
}

// Unions returns all union definitions, for the topological sort and the
// emitter. Order is not guaranteed; callers that need determinism sort
// explicitly (see internal/typesort).
func (r *Registry) Unions() []*UnionDef {
	out := make([]*UnionDef, 0, len(r.unions))
	for _, u := range r.unions {
		out = append(out, u)
	}
	return out
}

// Records returns all record definitions.
func (r *Registry) Records() []*RecordDef {
	out := make([]*RecordDef, 0, len(r.records))
	for _, d := range r.records {
		out = append(out, d)
	}
	return out
}

// Enums returns all enum definitions.
func (r *Registry) Enums() []*EnumDef {
	out := make([]*EnumDef, 0, len(r.enums))
	for _, d := range r.enums {
		out = append(out, d)
	}
	return out
}
