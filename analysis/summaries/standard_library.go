// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package summaries

import (
	. "github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// stdPackages maps the standard library packages to the signatures of their callables. Callables of a standard
// library package without an entry preserve taint.
var stdPackages = map[string]map[string]Signature{
	"bufio":         SummaryBufio,
	"bytes":         SummaryBytes,
	"database/sql":  SummaryDatabase,
	"encoding/gob":  SummaryEncoding,
	"encoding/json": SummaryEncoding,
	"errors":        SummaryErrors,
	"flag":          SummaryFlag,
	"fmt":           SummaryFmt,
	"html":          SummaryHtml,
	"html/template": SummaryHtmlTemplate,
	"io":            SummaryIo,
	"net/http":      SummaryNet,
	"net/url":       SummaryNetUrl,
	"os":            SummaryOs,
	"os/exec":       SummaryOs,
	"path":          SummaryPath,
	"path/filepath": SummaryPath,
	"plugin":        SummaryPlugin,
	"reflect":       SummaryReflect,
	"strconv":       SummaryStrconv,
	"strings":       SummaryStrings,
	"syscall":       SummaryOs,
	"text/template": SummaryTextTemplate,
	"unicode/utf8":  SummaryUnicode,
}

// builtins are the signatures of the predeclared functions
var builtins = map[string]Signature{
	"append":  Preserve,
	"cap":     NoPropagation,
	"close":   NoPropagation,
	"complex": NoPropagation,
	"copy":    NoPropagation,
	"delete":  NoPropagation,
	"imag":    NoPropagation,
	"len":     NoPropagation,
	"make":    NoPropagation,
	"max":     Preserve,
	"min":     Preserve,
	"new":     NoPropagation,
	"panic":   NoPropagation,
	"print":   NoPropagation,
	"println": NoPropagation,
	"real":    NoPropagation,
	"recover": NewSignature(UnknownTaint),
}

var SummaryBufio = map[string]Signature{
	"bufio.NewReader":                 Preserve,
	"bufio.NewScanner":                Preserve,
	"(*bufio.Reader).ReadString":      Preserve,
	"(*bufio.Reader).ReadLine":        Preserve,
	"(*bufio.Reader).ReadBytes":       Preserve,
	"(*bufio.Scanner).Text":           Preserve,
	"(*bufio.Scanner).Bytes":          Preserve,
	"(*bufio.Scanner).Scan":           NoPropagation,
	"(*bufio.Scanner).Err":            NoPropagation,
	"(*bufio.Writer).Flush":           NoPropagation,
	"(*bufio.Writer).WriteString":     NoPropagation,
	"(*bufio.Reader).ReadRune":        Preserve,
	"(*bufio.ReadWriter).ReadString":  Preserve,
	"(*bufio.ReadWriter).WriteString": NoPropagation,
}

var SummaryBytes = map[string]Signature{
	"bytes.Compare":               NoPropagation,
	"bytes.Contains":              NoPropagation,
	"bytes.Equal":                 NoPropagation,
	"bytes.HasPrefix":             NoPropagation,
	"bytes.HasSuffix":             NoPropagation,
	"bytes.Index":                 NoPropagation,
	"bytes.IndexByte":             NoPropagation,
	"(*bytes.Buffer).Len":         NoPropagation,
	"(*bytes.Buffer).String":      Preserve,
	"(*bytes.Buffer).Bytes":       Preserve,
	"(*bytes.Buffer).Write":       NoPropagation,
	"(*bytes.Buffer).WriteString": NoPropagation,
}

// SummaryDatabase declares the query arguments of database/sql as SQL sinks. The receiver is parameter 0.
var SummaryDatabase = map[string]Signature{
	"(*database/sql.DB).Exec":              sink(SQLExecTaint, 1),
	"(*database/sql.DB).ExecContext":       sink(SQLExecTaint, 2),
	"(*database/sql.DB).Query":             sink(SQLExecTaint, 1),
	"(*database/sql.DB).QueryContext":      sink(SQLExecTaint, 2),
	"(*database/sql.DB).QueryRow":          sink(SQLExecTaint, 1),
	"(*database/sql.DB).QueryRowContext":   sink(SQLExecTaint, 2),
	"(*database/sql.DB).Prepare":           sink(SQLExecTaint, 1),
	"(*database/sql.DB).PrepareContext":    sink(SQLExecTaint, 2),
	"(*database/sql.Tx).Exec":              sink(SQLExecTaint, 1),
	"(*database/sql.Tx).ExecContext":       sink(SQLExecTaint, 2),
	"(*database/sql.Tx).Query":             sink(SQLExecTaint, 1),
	"(*database/sql.Tx).QueryContext":      sink(SQLExecTaint, 2),
	"(*database/sql.Tx).QueryRow":          sink(SQLExecTaint, 1),
	"(*database/sql.Tx).QueryRowContext":   sink(SQLExecTaint, 2),
	"(*database/sql.Tx).Prepare":           sink(SQLExecTaint, 1),
	"(*database/sql.Tx).PrepareContext":    sink(SQLExecTaint, 2),
	"(*database/sql.Conn).ExecContext":     sink(SQLExecTaint, 2),
	"(*database/sql.Conn).QueryContext":    sink(SQLExecTaint, 2),
	"(*database/sql.Conn).QueryRowContext": sink(SQLExecTaint, 2),
	"(*database/sql.Conn).PrepareContext":  sink(SQLExecTaint, 2),
	"(*database/sql.Rows).Next":            NoPropagation,
	"(*database/sql.Rows).Close":           NoPropagation,
	"(*database/sql.Rows).Err":             NoPropagation,
	"(*database/sql.Rows).Scan":            NoPropagation,
	"(*database/sql.Row).Scan":             NoPropagation,
	"(*database/sql.Stmt).Close":           NoPropagation,
	"(*database/sql.DB).Close":             NoPropagation,
	"(*database/sql.DB).Ping":              NoPropagation,
}

// SummaryEncoding declares the decoders of serialized data as sinks of serialized content
var SummaryEncoding = map[string]Signature{
	"encoding/gob.NewDecoder":         sink(SerializeExecTaint, 0),
	"encoding/json.Marshal":           Preserve,
	"encoding/json.MarshalIndent":     Preserve,
	"encoding/json.Valid":             NoPropagation,
	"encoding/json.NewEncoder":        NoPropagation,
	"(*encoding/json.Encoder).Encode": NoPropagation,
	"(*encoding/json.Decoder).Decode": NoPropagation,
	"(*encoding/gob.Encoder).Encode":  NoPropagation,
}

var SummaryErrors = map[string]Signature{
	"errors.New":    Preserve,
	"errors.Is":     NoPropagation,
	"errors.As":     NoPropagation,
	"errors.Unwrap": Preserve,
	"errors.Join":   Preserve,
}

// SummaryFlag marks the command line flags as external input
var SummaryFlag = map[string]Signature{
	"flag.Arg":       Source,
	"flag.Args":      Source,
	"flag.NArg":      NoPropagation,
	"flag.Parse":     NoPropagation,
	"flag.String":    Source,
	"flag.StringVar": NoPropagation,
	"flag.Int":       NoPropagation,
	"flag.Bool":      NoPropagation,
}

var SummaryFmt = map[string]Signature{
	"fmt.Sprintf":  Preserve,
	"fmt.Sprint":   Preserve,
	"fmt.Sprintln": Preserve,
	"fmt.Errorf":   Preserve,
	"fmt.Printf":   NoPropagation,
	"fmt.Println":  NoPropagation,
	"fmt.Print":    NoPropagation,
	"fmt.Fprintf":  NoPropagation,
	"fmt.Fprintln": NoPropagation,
	"fmt.Fprint":   NoPropagation,
	"fmt.Sscanf":   NoPropagation,
	"fmt.Scanln":   NoPropagation,
}

var SummaryHtml = map[string]Signature{
	"html.EscapeString":   escaper(HTMLTaint),
	"html.UnescapeString": Preserve,
}

// SummaryHtmlTemplate declares the escapers of html/template as sanitizers and the conversions to trusted content
// types as sinks
var SummaryHtmlTemplate = map[string]Signature{
	"html/template.HTMLEscapeString":            escaper(HTMLTaint),
	"html/template.HTMLEscaper":                 escaper(HTMLTaint),
	"html/template.JSEscapeString":              escaper(HTMLTaint),
	"html/template.URLQueryEscaper":             escaper(HTMLTaint),
	"html/template.HTML":                        sink(HTMLExecTaint, 0),
	"html/template.HTMLAttr":                    sink(HTMLExecTaint, 0),
	"html/template.JS":                          sink(HTMLExecTaint, 0),
	"html/template.URL":                         sink(HTMLExecTaint, 0),
	"html/template.CSS":                         sink(HTMLExecTaint, 0),
	"html/template.New":                         NoPropagation,
	"html/template.Must":                        Preserve,
	"(*html/template.Template).Parse":           sink(MiscExecTaint, 1),
	"(*html/template.Template).Execute":         NoPropagation,
	"(*html/template.Template).ExecuteTemplate": NoPropagation,
}

var SummaryIo = map[string]Signature{
	"io.ReadAll":     Preserve,
	"io.ReadFull":    NoPropagation,
	"io.Copy":        NoPropagation,
	"io.WriteString": NoPropagation,
	"io.LimitReader": Preserve,
	"io.MultiReader": Preserve,
}

// SummaryNet marks the request accessors as sources and the response writer as an HTML sink. The receiver is
// parameter 0.
var SummaryNet = map[string]Signature{
	"(*net/http.Request).FormValue":          Source,
	"(*net/http.Request).PostFormValue":      Source,
	"(*net/http.Request).FormFile":           Source,
	"(*net/http.Request).Cookie":             Source,
	"(*net/http.Request).Cookies":            Source,
	"(*net/http.Request).Referer":            Source,
	"(*net/http.Request).UserAgent":          Source,
	"(*net/http.Request).ParseForm":          NoPropagation,
	"(*net/http.Request).ParseMultipartForm": NoPropagation,
	"(*net/http.Request).Context":            NoPropagation,
	"(*net/http.Request).BasicAuth":          Source,
	"(net/http.ResponseWriter).Write":        sink(HTMLExecTaint, 1),
	"(net/http.ResponseWriter).WriteHeader":  NoPropagation,
	"(net/http.ResponseWriter).Header":       NoPropagation,
	"(net/http.Header).Get":                  Preserve,
	"(net/http.Header).Set":                  NoPropagation,
	"(net/http.Header).Add":                  NoPropagation,
	"net/http.Get":                           Source,
	"net/http.Post":                          Source,
	"net/http.HandleFunc":                    NoPropagation,
	"net/http.Handle":                        NoPropagation,
	"net/http.ListenAndServe":                NoPropagation,
	"net/http.Error":                         sink(HTMLExecTaint, 1),
	"net/http.Redirect":                      sink(Custom2ExecTaint, 2),
	"net/http.NewRequest":                    Preserve,
	"net/http.StatusText":                    NoPropagation,
}

var SummaryNetUrl = map[string]Signature{
	"net/url.QueryEscape":     escaper(HTMLTaint | ShellTaint | SQLTaint),
	"net/url.PathEscape":      escaper(HTMLTaint | ShellTaint | SQLTaint),
	"net/url.QueryUnescape":   Preserve,
	"net/url.PathUnescape":    Preserve,
	"net/url.Parse":           Preserve,
	"net/url.ParseQuery":      Preserve,
	"(*net/url.URL).Query":    Preserve,
	"(*net/url.URL).String":   Preserve,
	"(*net/url.URL).Hostname": Preserve,
	"(net/url.Values).Get":    Preserve,
	"(net/url.Values).Encode": escaper(HTMLTaint | ShellTaint | SQLTaint),
	"(net/url.Values).Has":    NoPropagation,
	"(net/url.Values).Set":    NoPropagation,
	"(net/url.Values).Add":    NoPropagation,
}

// SummaryOs declares the environment as a source and process creation as a shell sink. Variadic arguments are
// received as one parameter.
var SummaryOs = map[string]Signature{
	"os.Getenv":                     Source,
	"os.LookupEnv":                  Source,
	"os.Environ":                    Source,
	"os.Hostname":                   NoPropagation,
	"os.Exit":                       NoPropagation,
	"os.Getwd":                      NoPropagation,
	"os.Remove":                     NoPropagation,
	"os.ReadFile":                   Preserve,
	"os.WriteFile":                  NoPropagation,
	"os.StartProcess":               sink(ShellExecTaint, 0, 1),
	"os/exec.Command":               sink(ShellExecTaint, 0, 1),
	"os/exec.CommandContext":        sink(ShellExecTaint, 1, 2),
	"os/exec.LookPath":              sink(ShellExecTaint, 0),
	"(*os/exec.Cmd).Run":            NoPropagation,
	"(*os/exec.Cmd).Start":          NoPropagation,
	"(*os/exec.Cmd).Wait":           NoPropagation,
	"(*os/exec.Cmd).Output":         NewSignature(UnknownTaint),
	"(*os/exec.Cmd).CombinedOutput": NewSignature(UnknownTaint),
	"syscall.Exec":                  sink(ShellExecTaint, 0, 1),
	"syscall.ForkExec":              sink(ShellExecTaint, 0, 1),
	"syscall.Getenv":                Source,
}

var SummaryPath = map[string]Signature{
	"path.Base":           Preserve,
	"path.Clean":          Preserve,
	"path.Dir":            Preserve,
	"path.Ext":            Preserve,
	"path.Join":           Preserve,
	"path/filepath.Abs":   Preserve,
	"path/filepath.Base":  Preserve,
	"path/filepath.Clean": Preserve,
	"path/filepath.Dir":   Preserve,
	"path/filepath.Ext":   Preserve,
	"path/filepath.Join":  Preserve,
	"path/filepath.Rel":   Preserve,
	"path/filepath.IsAbs": NoPropagation,
	"path/filepath.Match": NoPropagation,
}

// SummaryPlugin declares loading a plugin as code evaluation
var SummaryPlugin = map[string]Signature{
	"plugin.Open":             sink(MiscExecTaint, 0),
	"(*plugin.Plugin).Lookup": sink(MiscExecTaint, 1),
}

var SummaryReflect = map[string]Signature{
	"reflect.TypeOf":               NoPropagation,
	"reflect.ValueOf":              Preserve,
	"reflect.DeepEqual":            NoPropagation,
	"(reflect.Value).MethodByName": sink(MiscExecTaint, 1),
	"(reflect.Value).FieldByName":  Preserve,
	"(reflect.Value).Interface":    Preserve,
	"(reflect.Value).String":       Preserve,
}

// SummaryStrconv declares the number parsers and formatters as sanitizers of every kind of content
var SummaryStrconv = map[string]Signature{
	"strconv.Atoi":        NoPropagation,
	"strconv.Itoa":        NoPropagation,
	"strconv.ParseBool":   NoPropagation,
	"strconv.ParseFloat":  NoPropagation,
	"strconv.ParseInt":    NoPropagation,
	"strconv.ParseUint":   NoPropagation,
	"strconv.FormatBool":  NoPropagation,
	"strconv.FormatFloat": NoPropagation,
	"strconv.FormatInt":   NoPropagation,
	"strconv.FormatUint":  NoPropagation,
	"strconv.Quote":       escaper(ShellTaint | SQLTaint),
	"strconv.Unquote":     Preserve,
}

var SummaryStrings = map[string]Signature{
	"strings.Compare":                NoPropagation,
	"strings.Contains":               NoPropagation,
	"strings.ContainsAny":            NoPropagation,
	"strings.ContainsRune":           NoPropagation,
	"strings.Count":                  NoPropagation,
	"strings.EqualFold":              NoPropagation,
	"strings.HasPrefix":              NoPropagation,
	"strings.HasSuffix":              NoPropagation,
	"strings.Index":                  NoPropagation,
	"strings.IndexByte":              NoPropagation,
	"strings.IndexRune":              NoPropagation,
	"strings.LastIndex":              NoPropagation,
	"strings.Cut":                    Preserve,
	"strings.Fields":                 Preserve,
	"strings.Join":                   Preserve,
	"strings.Repeat":                 Preserve,
	"strings.Replace":                Preserve,
	"strings.ReplaceAll":             Preserve,
	"strings.Split":                  Preserve,
	"strings.SplitN":                 Preserve,
	"strings.Title":                  Preserve,
	"strings.ToLower":                Preserve,
	"strings.ToUpper":                Preserve,
	"strings.TrimSpace":              Preserve,
	"strings.Trim":                   Preserve,
	"strings.TrimLeft":               Preserve,
	"strings.TrimRight":              Preserve,
	"strings.TrimPrefix":             Preserve,
	"strings.TrimSuffix":             Preserve,
	"strings.NewReader":              Preserve,
	"strings.NewReplacer":            NoPropagation,
	"(*strings.Builder).String":      Preserve,
	"(*strings.Builder).Len":         NoPropagation,
	"(*strings.Builder).WriteString": NoPropagation,
	"(*strings.Builder).WriteByte":   NoPropagation,
	"(*strings.Builder).WriteRune":   NoPropagation,
	"(*strings.Replacer).Replace":    Preserve,
}

// SummaryTextTemplate declares template sources as code evaluation. Executing a text template does not escape
// its data.
var SummaryTextTemplate = map[string]Signature{
	"text/template.New":                 NoPropagation,
	"text/template.Must":                Preserve,
	"text/template.HTMLEscapeString":    escaper(HTMLTaint),
	"(*text/template.Template).Parse":   sink(MiscExecTaint, 1),
	"(*text/template.Template).Execute": sink(HTMLExecTaint, 2),
}

var SummaryUnicode = map[string]Signature{
	"unicode/utf8.RuneCountInString": NoPropagation,
	"unicode/utf8.ValidString":       NoPropagation,
}
