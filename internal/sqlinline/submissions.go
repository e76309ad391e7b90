package sqlinline

// PostgreSQL statements. Positional parameters use $n.

const QInsertSubmission = `--sql 06d4e69d-53e4-4a74-9e62-0aa1f5dc8bf2
insert into submissions(id, name, phone, target, amount, message, type, date, is_deleted)
values ($1::bigint, $2::text, $3::text, $4::text, $5::bigint, $6::text, $7::text, $8::text, false);
`

const QListSubmissions = `--sql 27131a1b-2295-4efb-87c8-2d976dc33297
select id, name, phone, target, amount, coalesce(message, ''), type, date, is_deleted
from submissions
order by id desc;
`

const QUpdateSubmissionDeleted = `--sql 9157877d-1d5f-4a3f-90a9-c80125a135ef
update submissions set is_deleted = $2::boolean where id = $1::bigint;
`

const QDeleteSubmission = `--sql a4e1550b-3fa8-470f-a4e5-25c22b671c94
delete from submissions where id = $1::bigint;
`

const QPing = `--sql 62f7a07f-6074-46af-993f-c04799c6ecec
select 1;
`

// SQLite statements. is_deleted is stored as INTEGER 0/1.

const QInsertSubmissionSQLite = `--sql 48b53d89-e281-4074-b2b3-6c04dd3dd91b
insert into submissions(id, name, phone, target, amount, message, type, date, is_deleted)
values (?, ?, ?, ?, ?, ?, ?, ?, 0);
`

const QListSubmissionsSQLite = `--sql b1fe7ec4-3ee0-4b37-9a0b-a4e8212b2db6
select id, name, phone, target, amount, coalesce(message, ''), type, date, is_deleted
from submissions
order by id desc;
`

const QUpdateSubmissionDeletedSQLite = `--sql db24be02-21e7-48a4-80b7-4eb70412ef57
update submissions set is_deleted = ? where id = ?;
`

const QDeleteSubmissionSQLite = `--sql 28388629-08e7-4746-a702-65cfe9a1e80d
delete from submissions where id = ?;
`
