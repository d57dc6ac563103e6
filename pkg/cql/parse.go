package cql

import (
	"encoding/hex"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const marshalPackage = "org.apache.cassandra.db.marshal."

var cqlNames = map[string]*Type{
	"ascii":     TypeAscii,
	"bigint":    TypeBigint,
	"blob":      TypeBlob,
	"boolean":   TypeBoolean,
	"counter":   TypeCounter,
	"decimal":   TypeDecimal,
	"double":    TypeDouble,
	"duration":  TypeDuration,
	"float":     TypeFloat,
	"inet":      TypeInet,
	"int":       TypeInt,
	"smallint":  TypeSmallint,
	"text":      TypeText,
	"timestamp": TypeTimestamp,
	"date":      TypeDate,
	"time":      TypeTime,
	"timeuuid":  TypeTimeuuid,
	"tinyint":   TypeTinyint,
	"uuid":      TypeUuid,
	"varchar":   TypeVarchar,
	"varint":    TypeVarint,
}

var classNames = map[string]*Type{
	"AsciiType":         TypeAscii,
	"LongType":          TypeBigint,
	"BytesType":         TypeBlob,
	"BooleanType":       TypeBoolean,
	"CounterColumnType": TypeCounter,
	"DecimalType":       TypeDecimal,
	"DoubleType":        TypeDouble,
	"DurationType":      TypeDuration,
	"FloatType":         TypeFloat,
	"InetAddressType":   TypeInet,
	"Int32Type":         TypeInt,
	"ShortType":         TypeSmallint,
	"UTF8Type":          TypeText,
	"TimestampType":     TypeTimestamp,
	"DateType":          TypeTimestamp,
	"SimpleDateType":    TypeDate,
	"TimeType":          TypeTime,
	"TimeUUIDType":      TypeTimeuuid,
	"ByteType":          TypeTinyint,
	"UUIDType":          TypeUuid,
	"IntegerType":       TypeVarint,
}

// Parser parses type strings and caches the results.
type Parser struct {
	cache *lru.Cache[string, *Type]
}

// NewParser returns a parser caching up to size types.
func NewParser(size int) (*Parser, error) {
	cache, err := lru.New[string, *Type](size)
	if err != nil {
		return nil, err
	}
	return &Parser{cache: cache}, nil
}

var defaultParser = func() *Parser {
	p, err := NewParser(1024)
	if err != nil {
		panic(err)
	}
	return p
}()

// ParseType parses a CQL type such as "map<text, frozen<list<int>>>" or a
// marshal class name such as
// "org.apache.cassandra.db.marshal.ListType(org.apache.cassandra.db.marshal.Int32Type)".
func ParseType(s string) (*Type, error) {
	return defaultParser.Parse(s)
}

// Parse parses a CQL type or marshal class name.
func (p *Parser) Parse(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	if t, ok := p.cache.Get(s); ok {
		return t, nil
	}
	var (
		t   *Type
		err error
	)
	if strings.Contains(s, "(") || strings.HasPrefix(s, marshalPackage) || strings.HasSuffix(s, "Type") {
		t, err = parseClass(s)
	} else {
		t, err = parseCQL(s)
	}
	if err != nil {
		return nil, err
	}
	p.cache.Add(s, t)
	return t, nil
}

type typeLexer struct {
	input string
	pos   int
}

func (l *typeLexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t' || l.input[l.pos] == '\n') {
		l.pos++
	}
}

func (l *typeLexer) peek() byte {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *typeLexer) expect(c byte) error {
	if l.peek() != c {
		return l.errorf("expected '%c'", c)
	}
	l.pos++
	return nil
}

// ident reads an identifier, a dotted class name or a quoted identifier.
func (l *typeLexer) ident() string {
	l.skipSpace()
	if l.pos < len(l.input) && l.input[l.pos] == '"' {
		end := strings.IndexByte(l.input[l.pos+1:], '"')
		if end < 0 {
			return ""
		}
		id := l.input[l.pos+1 : l.pos+1+end]
		l.pos += end + 2
		return id
	}
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '_' || c == '.' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		break
	}
	return l.input[start:l.pos]
}

func (l *typeLexer) errorf(format string, args ...interface{}) error {
	return InvalidArgumentf("Invalid type '%s': "+format, append([]interface{}{l.input}, args...)...)
}

func parseCQL(s string) (*Type, error) {
	l := &typeLexer{input: s}
	t, err := l.cqlType()
	if err != nil {
		return nil, err
	}
	if l.peek() != 0 {
		return nil, l.errorf("unexpected trailing input at %d", l.pos)
	}
	return t, nil
}

func (l *typeLexer) cqlType() (*Type, error) {
	l.skipSpace()
	if l.peek() == '\'' {
		end := strings.IndexByte(l.input[l.pos+1:], '\'')
		if end < 0 {
			return nil, l.errorf("unterminated custom type")
		}
		class := l.input[l.pos+1 : l.pos+1+end]
		l.pos += end + 2
		return CustomType(class), nil
	}
	name := strings.ToLower(l.ident())
	if name == "" {
		return nil, l.errorf("expected a type name at %d", l.pos)
	}
	if t, ok := cqlNames[name]; ok {
		return t, nil
	}
	switch name {
	case "frozen":
		if err := l.expect('<'); err != nil {
			return nil, err
		}
		t, err := l.cqlType()
		if err != nil {
			return nil, err
		}
		return t, l.expect('>')
	case "list", "set", "map", "tuple":
		if err := l.expect('<'); err != nil {
			return nil, err
		}
		var params []*Type
		for {
			t, err := l.cqlType()
			if err != nil {
				return nil, err
			}
			params = append(params, t)
			if l.peek() != ',' {
				break
			}
			l.pos++
		}
		if err := l.expect('>'); err != nil {
			return nil, err
		}
		switch name {
		case "list", "set":
			if len(params) != 1 {
				return nil, l.errorf("%s takes 1 type parameter, %d given", name, len(params))
			}
			if name == "list" {
				return ListType(params[0]), nil
			}
			return SetType(params[0]), nil
		case "map":
			if len(params) != 2 {
				return nil, l.errorf("map takes 2 type parameters, %d given", len(params))
			}
			return MapType(params[0], params[1]), nil
		default:
			return TupleType(params...), nil
		}
	}
	return nil, l.errorf("unknown type %q", name)
}

func parseClass(s string) (*Type, error) {
	l := &typeLexer{input: s}
	t, err := l.classType()
	if err != nil {
		return nil, err
	}
	if l.peek() != 0 {
		return nil, l.errorf("unexpected trailing input at %d", l.pos)
	}
	return t, nil
}

func (l *typeLexer) classParams() ([]string, error) {
	if err := l.expect('('); err != nil {
		return nil, err
	}
	var params []string
	depth, start := 0, l.pos
	for ; l.pos < len(l.input); l.pos++ {
		switch l.input[l.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				params = append(params, strings.TrimSpace(l.input[start:l.pos]))
				l.pos++
				return params, nil
			}
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(l.input[start:l.pos]))
				start = l.pos + 1
			}
		}
	}
	return nil, l.errorf("unbalanced parentheses")
}

func (l *typeLexer) classType() (*Type, error) {
	full := l.ident()
	if full == "" {
		return nil, l.errorf("expected a class name at %d", l.pos)
	}
	name := strings.TrimPrefix(full, marshalPackage)
	if t, ok := classNames[name]; ok {
		return t, nil
	}
	if l.peek() != '(' {
		return CustomType(full), nil
	}
	params, err := l.classParams()
	if err != nil {
		return nil, err
	}
	sub := func(i int) (*Type, error) {
		return parseClass(params[i])
	}
	switch name {
	case "ReversedType", "FrozenType":
		if len(params) != 1 {
			return nil, l.errorf("%s takes 1 parameter", name)
		}
		return sub(0)
	case "ListType", "SetType":
		if len(params) != 1 {
			return nil, l.errorf("%s takes 1 parameter", name)
		}
		elem, err := sub(0)
		if err != nil {
			return nil, err
		}
		if name == "ListType" {
			return ListType(elem), nil
		}
		return SetType(elem), nil
	case "MapType":
		if len(params) != 2 {
			return nil, l.errorf("MapType takes 2 parameters")
		}
		key, err := sub(0)
		if err != nil {
			return nil, err
		}
		value, err := sub(1)
		if err != nil {
			return nil, err
		}
		return MapType(key, value), nil
	case "TupleType":
		elems := make([]*Type, len(params))
		for i := range params {
			if elems[i], err = sub(i); err != nil {
				return nil, err
			}
		}
		return TupleType(elems...), nil
	case "UserType":
		if len(params) < 2 {
			return nil, l.errorf("UserType takes a keyspace and a name")
		}
		udtName, err := hex.DecodeString(params[1])
		if err != nil {
			return nil, l.errorf("invalid user type name %q", params[1])
		}
		fields := make([]Field, 0, len(params)-2)
		for _, p := range params[2:] {
			i := strings.IndexByte(p, ':')
			if i < 0 {
				return nil, l.errorf("invalid user type field %q", p)
			}
			fieldName, err := hex.DecodeString(p[:i])
			if err != nil {
				return nil, l.errorf("invalid user type field %q", p)
			}
			ft, err := parseClass(p[i+1:])
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: string(fieldName), Type: ft})
		}
		return UDTType(params[0], string(udtName), fields...), nil
	}
	return CustomType(l.input), nil
}
