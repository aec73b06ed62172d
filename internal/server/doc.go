// Package server は、ソケットを直接扱う最小限のHTTP/1.xサーバーを提供します。
//
// このパッケージは、接続の受け付け、リクエストのパース、
// 静的リソースとServiceへのルーティング、レスポンスの書き出しを担当します。
//
// 責務:
//   - リスニングソケットの管理と接続ごとのworkerの起動
//   - リクエスト行とヘッダーのパース (最初のデータを最大10秒待つ)
//   - 静的リソースの読み込み (ファイルシステムとパッケージアーカイブ)
//   - 静的ファイルの時間ベースの読み直し
//   - パスごとのServiceへのメソッド振り分け
//   - CORSのOriginの返却
//   - エラーの種類に応じたステータスコードとJSONボディの生成
//
// 仕様:
//   - 接続ごとに1つのゴルーチン (プールなし、同時接続数の上限は設定で任意)
//   - keep-aliveなし。1接続1リクエストで、書き出し後に必ず閉じる
//   - Content-Length は常にボディの長さと一致する
//   - HTTP/2、TLS、chunked転送、圧縮、ボディのストリーミングは扱わない
//   - 静的リソースとServiceの登録は開始前のみ。配信中は読み込み専用
package server
