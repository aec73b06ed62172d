package i18n

// メッセージキー
const (
	KeyNotFound          = "not.found"
	KeyNotImplemented    = "not.implemented"
	KeyMethodNotAllowed  = "method.not.allowed"
	KeyCouldNotReadFile  = "could.not.read.a.file"
	KeyUnexpectedFailure = "unexpected.failure"

	KeyErrorReadingRequest      = "error.reading.http.request"
	KeyCouldNotReadFirstLine    = "error.reading.http.request.could.not.read.first.line"
	KeyFirstLineTimeout         = "error.reading.http.request.could.not.read.first.line.timeout.of.10.seconds"
	KeyFirstLineInWrongFormat   = "error.reading.http.request.first.line.in.wrong.format"
	KeyUnknownMethodInFirstLine = "error.reading.http.request.unknown.method"
)

// builtin は組み込みメッセージ
var builtin = map[string]map[string]string{
	"pt_BR": {
		KeyNotFound:                 "Recurso {0} não encontrado.",
		KeyNotImplemented:           "Não implementado.",
		KeyMethodNotAllowed:         "Método {0} não permitido.",
		KeyCouldNotReadFile:         "Não foi possível ler o arquivo {0}.",
		KeyUnexpectedFailure:        "Falha inesperada.",
		KeyErrorReadingRequest:      "Erro lendo a requisição HTTP.",
		KeyCouldNotReadFirstLine:    "Erro lendo a requisição HTTP: não foi possível ler a primeira linha.",
		KeyFirstLineTimeout:         "Erro lendo a requisição HTTP: a primeira linha não chegou em 10 segundos.",
		KeyFirstLineInWrongFormat:   "Erro lendo a requisição HTTP: primeira linha em formato errado: {0}",
		KeyUnknownMethodInFirstLine: "Erro lendo a requisição HTTP: método desconhecido: {0}",
	},
	"en": {
		KeyNotFound:                 "Resource {0} not found.",
		KeyNotImplemented:           "Not implemented.",
		KeyMethodNotAllowed:         "Method {0} not allowed.",
		KeyCouldNotReadFile:         "Could not read the file {0}.",
		KeyUnexpectedFailure:        "Unexpected failure.",
		KeyErrorReadingRequest:      "Error reading the HTTP request.",
		KeyCouldNotReadFirstLine:    "Error reading the HTTP request: could not read the first line.",
		KeyFirstLineTimeout:         "Error reading the HTTP request: the first line did not arrive within 10 seconds.",
		KeyFirstLineInWrongFormat:   "Error reading the HTTP request: first line in wrong format: {0}",
		KeyUnknownMethodInFirstLine: "Error reading the HTTP request: unknown method: {0}",
	},
}
