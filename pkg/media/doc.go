/*
Package media implements spec.md §4.F's chunked upload store: a
three-step start/put_chunk/finish protocol bounded by MaxObjectSize, plus
a background Reaper that deletes uploads abandoned before finish. The
`GET /media/<id>` HTTP surface lives in pkg/api.
*/
package media
