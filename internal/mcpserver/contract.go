package mcpserver

// OutputFormatContract documents the structured reply every proofreading
// call produces, for MCP clients that want to post-process results.
const OutputFormatContract = `Proofreading replies are a single JSON object with exactly three keys:

  corrected_text  string  the fully corrected document text
  corrections     array   one object per edit: {original, corrected, reason}
  summary         string  an overall comment on the text

Document types (doc_type):
  notebook       連絡帳 (parent-facing notebook)
  daily_log      保育日誌 (internal daily log)
  documentation  ドキュメンテーション (developmental records)
  other          その他

Tones (tone, for adjust_tone):
  polite   丁寧 (more formal, honorific register)
  soft     やわらか (warmer, friendlier phrasing)
  concise  簡潔 (shorter, plainer phrasing)
`
