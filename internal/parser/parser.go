package parser

import (
	"slices"

	"golang.org/x/text/unicode/norm"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/source"
	"shale/internal/token"
)

type Options struct {
	Trace bool
	// MaxErrors bounds reported syntax errors. Compilation runs with 1, so the
	// first error stops the parse; tooling may ask for more and get resync.
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Bag    *diag.Bag
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span of the last consumed token
	lastKind token.Kind
}

// ParseFile parses one file into arenas. The lexer must be built over a file
// registered in fs.
func ParseFile(
	fs *source.FileSet,
	lx *lexer.Lexer,
	arenas *ast.Builder,
	opts Options,
) Result {
	p := newParser(fs, lx, arenas, opts)
	p.file = arenas.NewFile(lx.EmptySpan())
	p.parseItems()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{File: p.file, Bag: bag, Errors: p.opts.CurrentErrors}
}

func newParser(fs *source.FileSet, lx *lexer.Lexer, arenas *ast.Builder, opts Options) *Parser {
	return &Parser{
		lx:       lx,
		arenas:   arenas,
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseItems: основной цикл верхнего уровня, parseItem до EOF.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	p.skipSeps()
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			if p.opts.Enough() {
				break
			}
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
		if !p.atOr(token.EOF) && !p.endOfStmt("after top-level item") {
			if p.opts.Enough() {
				break
			}
			p.resyncTop()
		}
		p.skipSeps()
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lastSpan)
}

// parseItem выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwImport:
		return p.parseImportItem()
	case token.KwLet:
		return p.parseLetItem()
	case token.KwFn:
		return p.parseFnItem()
	default:
		p.err(diag.SynUnexpectedTopLevel, "expected 'fn', 'let' or 'import' at top level, got "+describe(p.lx.Peek()))
		return ast.NoItemID, false
	}
}

// resyncTop: восстановление после ошибки на верхнем уровне.
func (p *Parser) resyncTop() {
	for !p.at(token.EOF) {
		if p.lastKind == token.Newline && isTopLevelStarter(p.lx.Peek().Kind) {
			return
		}
		p.advance()
	}
}

func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwImport, token.KwLet, token.KwFn:
		return true
	default:
		return false
	}
}

// parseIdent expects an identifier and interns its NFC form.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	tok := p.lx.Peek()
	if tok.Kind == token.Ident {
		p.advance()
		return p.intern(tok.Text), tok.Span, true
	}
	if tok.IsKeyword() {
		p.err(diag.SynReservedWord, describe(tok)+" is a reserved word and cannot be used as a name")
		return source.NoStringID, tok.Span, false
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(tok))
	return source.NoStringID, tok.Span, false
}

func (p *Parser) intern(name string) source.StringID {
	if !norm.NFC.IsNormalString(name) {
		name = norm.NFC.String(name)
	}
	return p.arenas.StringsInterner.Intern(name)
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Ident:
		return "identifier '" + tok.Text + "'"
	case token.EOF, token.Newline:
		return tok.Kind.String()
	}
	if tok.IsKeyword() || tok.IsLiteral() {
		return tok.Kind.String()
	}
	return "'" + tok.Text + "'"
}
