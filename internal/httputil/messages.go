package httputil

// User-facing messages. The UI is Portuguese.
const (
	MsgNotAuthenticated   = "Não autenticado com o Google Drive"
	MsgInvalidRequest     = "Requisição inválida"
	MsgMissingCode        = "Código de autorização ausente"
	MsgInvalidState       = "Estado de autenticação inválido ou expirado"
	MsgAuthFailed         = "Falha na autenticação com o Google"
	MsgOAuthNotConfigured = "Integração com o Google não configurada"
	MsgBackupFailed       = "Falha ao criar backup no Google Drive"
	MsgRestoreFailed      = "Falha ao restaurar backup do Google Drive"
	MsgHistoryFailed      = "Falha ao buscar histórico de backups"
	MsgUploadFailed       = "Falha ao enviar arquivo para o Google Drive"
	MsgNoBackup           = "Nenhum backup encontrado"
	MsgTooManyRequests    = "Muitas requisições, tente novamente em instantes"
)
