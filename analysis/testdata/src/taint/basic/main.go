package main

import (
	"database/sql"
	"fmt"
	"html"
	"net/http"
	"os"
)

func handler(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")      // @Source(a)
	w.Write([]byte("hello " + name)) // @Sink(a) @Issue(xss)
	w.Write([]byte(html.EscapeString(name)))
	w.Write([]byte(name)) //argot:ignore
}

func query(db *sql.DB, id string) {
	db.Query("SELECT * FROM t WHERE id = " + id)
}

func main() {
	http.HandleFunc("/", handler)
	db, _ := sql.Open("sqlite", "x")
	query(db, os.Args[1]) // @Issue(sql-injection)
	fmt.Println("done")
}
